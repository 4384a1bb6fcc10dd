// Package ports derives the actual ports of a node from its type
// definition and instance data, with a per-node memo keyed on identity
// so unchanged nodes never pay for re-derivation.
package ports

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/chazu/patchboard/pkg/catalog"
	"github.com/chazu/patchboard/pkg/graph"
)

// ErrNoDefinition is returned when a node's type has no catalog entry.
// This is a caller/catalog mismatch and must surface, never degrade.
var ErrNoDefinition = errors.New("no definition for node type")

// cacheEntry records the identity triple that produced the cached ports.
// A hit requires all three to match by reference: type tag, data map
// pointer, and definition pointer. A hot-reloaded catalog with equal
// contents therefore still misses.
type cacheEntry struct {
	typeTag string
	dataPtr uintptr
	def     *catalog.TypeDef
	ports   []graph.Port
}

// Resolver memoizes port derivation per node id. Each store owns exactly
// one Resolver; there is no cross-store sharing.
type Resolver struct {
	mu    sync.Mutex
	cache map[graph.NodeID]cacheEntry
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[graph.NodeID]cacheEntry)}
}

// Resolve returns the node's ports under the given definition. The
// result slice is cached; callers must treat it as read-only.
func (r *Resolver) Resolve(node *graph.Node, def *catalog.TypeDef) ([]graph.Port, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoDefinition, node.Type)
	}

	dp := dataPtr(node.Data)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.cache[node.ID]; ok &&
		e.typeTag == node.Type && e.dataPtr == dp && e.def == def {
		return e.ports, nil
	}

	derived := derive(node, def)
	r.cache[node.ID] = cacheEntry{
		typeTag: node.Type,
		dataPtr: dp,
		def:     def,
		ports:   derived,
	}
	return derived, nil
}

// ClearCache drops every cached entry.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[graph.NodeID]cacheEntry)
}

// ClearNodeCache drops the entry for one node.
func (r *Resolver) ClearNodeCache(id graph.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, id)
}

// derive builds the port list: the definition's static ports, then any
// data-driven dynamic ports, with per-instance label overrides applied.
func derive(node *graph.Node, def *catalog.TypeDef) []graph.Port {
	defs := def.Ports
	if def.DynamicPorts != nil {
		defs = append(append([]catalog.PortDef(nil), defs...), def.DynamicPorts(node.Data)...)
	}

	overrides := labelOverrides(node.Data)
	out := make([]graph.Port, 0, len(defs))
	for _, pd := range defs {
		p := graph.Port{
			ID:       pd.ID,
			NodeID:   node.ID,
			Role:     pd.Role,
			DataType: pd.DataType,
			Label:    pd.Label,
			MaxConns: pd.MaxConns,
		}
		if label, ok := overrides[string(pd.ID)]; ok {
			p.Label = label
		}
		out = append(out, p)
	}
	return out
}

// labelOverrides extracts the optional per-instance port label map from
// the node data payload ("port_labels": {portID: label}).
func labelOverrides(data graph.NodeData) map[string]string {
	raw, ok := data["port_labels"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for id, v := range raw {
		if s, ok := v.(string); ok {
			out[id] = s
		}
	}
	return out
}

// dataPtr returns the identity of the node's data map. Nil maps share
// identity zero.
func dataPtr(d graph.NodeData) uintptr {
	if d == nil {
		return 0
	}
	return reflect.ValueOf(d).Pointer()
}

// Contains reports whether the resolved port list includes the port id.
func Contains(ports []graph.Port, id graph.PortID) bool {
	for _, p := range ports {
		if p.ID == id {
			return true
		}
	}
	return false
}
