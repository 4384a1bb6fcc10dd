// Package catalog holds the node type definitions a document is edited
// against. The catalog is read-mostly input to the core: it is consulted
// for group capability and port derivation but never mutated by it.
package catalog

import (
	"fmt"
	"sort"

	"github.com/chazu/patchboard/pkg/graph"
)

// PortDef declares one port a node type exposes.
type PortDef struct {
	ID       graph.PortID
	Role     graph.PortRole
	DataType string
	Label    string
	MaxConns int // 0 = unlimited
}

// TypeDef describes one node type. A TypeDef value is identity-significant:
// the port resolver keys cache entries on the *TypeDef pointer, so a
// hot-reloaded catalog with equal contents still forces re-derivation.
type TypeDef struct {
	Tag   string
	Label string
	Group bool // may contain other nodes via parent membership
	Ports []PortDef

	// Defaults seeds the data payload of freshly created nodes.
	Defaults graph.NodeData

	// DynamicPorts derives additional ports from instance data, for
	// types whose port list depends on configuration (e.g. a merge node
	// with a variable input count). Optional.
	DynamicPorts func(data graph.NodeData) []PortDef
}

// Catalog is a registry of node type definitions.
type Catalog struct {
	defs map[string]*TypeDef
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{defs: make(map[string]*TypeDef)}
}

// Register adds a type definition. Duplicate tags are an error.
func (c *Catalog) Register(def *TypeDef) error {
	if def.Tag == "" {
		return fmt.Errorf("catalog: type definition has empty tag")
	}
	if _, exists := c.defs[def.Tag]; exists {
		return fmt.Errorf("catalog: type %q already registered", def.Tag)
	}
	c.defs[def.Tag] = def
	return nil
}

// Lookup returns the definition for the tag, or nil.
func (c *Catalog) Lookup(tag string) *TypeDef {
	return c.defs[tag]
}

// Has reports whether the tag is registered.
func (c *Catalog) Has(tag string) bool {
	_, ok := c.defs[tag]
	return ok
}

// IsGroup reports whether the tag denotes a group-capable type.
// Unknown tags are not groups.
func (c *Catalog) IsGroup(tag string) bool {
	def := c.defs[tag]
	return def != nil && def.Group
}

// FirstGroupTag returns the tag of a group-capable type, preferring the
// lexicographically first for determinism, or "" when none exists.
func (c *Catalog) FirstGroupTag() string {
	var tags []string
	for tag, def := range c.defs {
		if def.Group {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return ""
	}
	sort.Strings(tags)
	return tags[0]
}

// Tags returns all registered tags in sorted order.
func (c *Catalog) Tags() []string {
	tags := make([]string, 0, len(c.defs))
	for tag := range c.defs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered types.
func (c *Catalog) Len() int { return len(c.defs) }
