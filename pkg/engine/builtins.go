package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/patchboard/pkg/catalog"
	"github.com/chazu/patchboard/pkg/clipboard"
	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/ports"
	"github.com/chazu/patchboard/pkg/reducer"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms DSL source before passing it to zygomys.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: auto-layout -> auto_layout
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a node id so forms can pass nodes to each other.
type sexpNodeRef struct {
	id    graph.NodeID
	title string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.title != "" {
		return fmt.Sprintf("(noderef %q)", n.title)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks whether a Sexp is a preprocessed keyword string and
// returns the keyword name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return "", fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toDataValue converts a scalar Sexp into a document data value.
// Numbers land as float64, the document's native numeric form.
func toDataValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		return strings.TrimPrefix(v.S, kwPrefix), nil
	case *zygo.SexpBool:
		return v.Val, nil
	}
	return nil, fmt.Errorf("expected scalar, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Document builder
// ---------------------------------------------------------------------------

// docBuilder accumulates the document a script describes by running
// each form through the regular action pipeline.
type docBuilder struct {
	rev *graph.Revision
	env reducer.Env
}

func newDocBuilder(cat *catalog.Catalog) *docBuilder {
	return &docBuilder{
		rev: graph.NewRevision(),
		env: reducer.Env{
			Catalog:   cat,
			Ports:     ports.NewResolver(),
			Clipboard: clipboard.New(),
		},
	}
}

func (d *docBuilder) apply(act reducer.Action) {
	d.rev = reducer.Apply(d.rev, act, d.env)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the DSL forms into a zygomys environment.
// The forms mutate b through the action pipeline during evaluation.
//
// Source must be preprocessed with preprocessSource() first so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *docBuilder) {

	// -----------------------------------------------------------------------
	// (node "timer" :id "clock" :title "Main clock" :x 40 :y 120 :inputs 3)
	//
	// Reserved keywords: id, title, x, y. Every other keyword lands in
	// the node's data payload.
	// -----------------------------------------------------------------------
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("node requires a type tag")
		}
		typeTag, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: type: %w", err)
		}
		if b.env.Catalog != nil && !b.env.Catalog.Has(typeTag) {
			return zygo.SexpNull, fmt.Errorf("node: unknown type %q", typeTag)
		}

		id := graph.NewNodeID()
		var title string
		var pos graph.Vec2
		data := graph.NodeData{}
		for key, val := range pa.kw {
			switch key {
			case "id":
				s, err := toString(val)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("node: id: %w", err)
				}
				id = graph.NodeID(s)
			case "title":
				if title, err = toString(val); err != nil {
					return zygo.SexpNull, fmt.Errorf("node: title: %w", err)
				}
			case "x":
				if pos.X, err = toFloat64(val); err != nil {
					return zygo.SexpNull, fmt.Errorf("node: x: %w", err)
				}
			case "y":
				if pos.Y, err = toFloat64(val); err != nil {
					return zygo.SexpNull, fmt.Errorf("node: y: %w", err)
				}
			default:
				v, err := toDataValue(val)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("node: %s: %w", key, err)
				}
				data[key] = v
			}
		}

		b.apply(reducer.AddNodeWithID{ID: id, Type: typeTag, Position: pos, Title: title, Data: data})
		return &sexpNodeRef{id: id, title: title}, nil
	})

	// -----------------------------------------------------------------------
	// (wire from "out" to "in")
	// -----------------------------------------------------------------------
	env.AddFunction("wire", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("wire requires (wire from-node from-port to-node to-port)")
		}
		from, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wire: from: %w", err)
		}
		fromPort, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wire: from-port: %w", err)
		}
		to, err := toNodeRef(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wire: to: %w", err)
		}
		toPort, err := toString(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wire: to-port: %w", err)
		}

		b.apply(reducer.AddConnection{
			FromNode: from,
			FromPort: graph.PortID(fromPort),
			ToNode:   to,
			ToPort:   graph.PortID(toPort),
		})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (group :type "frame" ref ref ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var ids []graph.NodeID
		for i, arg := range pa.positional {
			id, err := toNodeRef(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: member %d: %w", i, err)
			}
			ids = append(ids, id)
		}
		var typeTag string
		if v, ok := pa.kw["type"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: type: %w", err)
			}
			typeTag = s
		}

		live := 0
		for _, id := range ids {
			if b.rev.Node(id) != nil {
				live++
			}
		}
		if live == 0 {
			return zygo.SexpNull, fmt.Errorf("group: no members to enclose")
		}

		groupID := graph.NewNodeID()
		b.apply(reducer.GroupNodes{IDs: ids, GroupID: groupID, Type: typeTag})
		if b.rev.Node(groupID) == nil {
			return zygo.SexpNull, fmt.Errorf("group: no group-capable type available")
		}
		return &sexpNodeRef{id: groupID}, nil
	})

	// -----------------------------------------------------------------------
	// (parent child group), (parent child) clears membership
	// -----------------------------------------------------------------------
	env.AddFunction("parent", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("parent requires a child node")
		}
		child, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("parent: child: %w", err)
		}
		var group graph.NodeID
		if len(args) > 1 {
			if group, err = toNodeRef(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("parent: group: %w", err)
			}
		}

		b.apply(reducer.UpdateGroupMembership{Parents: map[graph.NodeID]graph.NodeID{child: group}})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (move ref 120 80)
	// -----------------------------------------------------------------------
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("move requires (move node x y)")
		}
		id, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: node: %w", err)
		}
		x, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: x: %w", err)
		}
		y, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: y: %w", err)
		}

		b.apply(reducer.MoveNode{ID: id, Position: graph.Vec2{X: x, Y: y}})
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (remove ref)
	// -----------------------------------------------------------------------
	env.AddFunction("remove", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove requires a node reference")
		}
		id, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove: %w", err)
		}

		b.apply(reducer.DeleteNode{ID: id})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (duplicate ref ref ...)
	// -----------------------------------------------------------------------
	env.AddFunction("duplicate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var ids []graph.NodeID
		for i, arg := range args {
			id, err := toNodeRef(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("duplicate: argument %d: %w", i, err)
			}
			ids = append(ids, id)
		}

		b.apply(reducer.DuplicateNodes{IDs: ids})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (prune)
	// -----------------------------------------------------------------------
	env.AddFunction("prune", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		b.apply(reducer.PruneConnectionsAction{})
		return zygo.SexpNull, nil
	})
}
