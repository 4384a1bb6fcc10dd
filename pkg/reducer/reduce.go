// Package reducer performs every structural mutation of the document as
// a pure transform from one revision to the next, classifies the
// resulting change for downstream caches, and prunes connections that no
// longer resolve.
package reducer

import (
	"time"

	"github.com/chazu/patchboard/pkg/catalog"
	"github.com/chazu/patchboard/pkg/clipboard"
	"github.com/chazu/patchboard/pkg/graph"
)

// PortSource resolves a node's ports under a type definition. Satisfied
// by *ports.Resolver.
type PortSource interface {
	Resolve(node *graph.Node, def *catalog.TypeDef) ([]graph.Port, error)
}

// Env carries the collaborators a reducer step may consult. The catalog
// is read-only input; the clipboard is the one deliberate side channel
// (its buffer lives outside every revision by design).
type Env struct {
	Catalog   *catalog.Catalog
	Ports     PortSource
	Clipboard *clipboard.Clipboard

	// Now is an injectable clock for creation timestamps. Nil means
	// time.Now.
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Apply computes the next revision for an action. Every handler is
// defensive: acting on a missing id returns the input unchanged, and
// unknown action kinds are no-ops.
func Apply(rev *graph.Revision, act Action, env Env) *graph.Revision {
	switch a := act.(type) {
	case AddNode:
		return applyAdd(rev, graph.NewNodeID(), a.Type, a.Position, a.Title, a.Data, env)
	case AddNodeWithID:
		if a.ID.IsZero() {
			return rev
		}
		return applyAdd(rev, a.ID, a.Type, a.Position, a.Title, a.Data, env)
	case UpdateNode:
		return applyUpdate(rev, a, env)
	case DeleteNode:
		return rev.WithoutNode(a.ID)
	case MoveNode:
		return applyMove(rev, map[graph.NodeID]graph.Vec2{a.ID: a.Position})
	case MoveNodes:
		return applyMove(rev, a.Positions)
	case AddConnection:
		return applyConnect(rev, a)
	case DeleteConnection:
		return rev.WithoutConnection(a.ID)
	case DuplicateNodes:
		return applyDuplicate(rev, a, env)
	case GroupNodes:
		return applyGroup(rev, a, env)
	case UngroupNode:
		return applyUngroup(rev, a, env)
	case UpdateGroupMembership:
		return applyMembership(rev, a)
	case MoveGroupWithChildren:
		return applyMoveGroup(rev, a)
	case SetDocument:
		return applyReplace(a.Revision)
	case RestoreDocument:
		return applyReplace(a.Revision)
	case PruneConnectionsAction:
		return PruneConnections(rev, env)
	case CopyNodes:
		if buf := clipboard.Copy(rev, a.IDs); buf != nil && env.Clipboard != nil {
			env.Clipboard.Set(buf)
		}
		return rev
	case PasteNodes:
		return applyPaste(rev, a, env)
	case AutoLayout:
		return rev
	default:
		return rev
	}
}

func applyAdd(rev *graph.Revision, id graph.NodeID, typ string, pos graph.Vec2, title string, data graph.NodeData, env Env) *graph.Revision {
	node := &graph.Node{
		ID:        id,
		Type:      typ,
		Title:     title,
		Position:  pos,
		Data:      seedData(typ, data, env),
		Visible:   true,
		CreatedAt: env.now(),
	}
	return rev.WithNode(node)
}

// seedData overlays the caller's payload on the type's declared
// defaults. Result identity is always fresh so port derivation sees the
// new node.
func seedData(typ string, data graph.NodeData, env Env) graph.NodeData {
	var defaults graph.NodeData
	if env.Catalog != nil {
		if def := env.Catalog.Lookup(typ); def != nil {
			defaults = def.Defaults
		}
	}
	if defaults == nil && data == nil {
		return nil
	}
	out := defaults.Clone()
	if out == nil {
		out = make(graph.NodeData, len(data))
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func applyUpdate(rev *graph.Revision, a UpdateNode, env Env) *graph.Revision {
	n := rev.Node(a.ID)
	if n == nil {
		return rev
	}

	repl := n.Clone()
	p := a.Patch
	if p.Type != nil {
		repl.Type = *p.Type
	}
	if p.Title != nil {
		repl.Title = *p.Title
	}
	if p.Position != nil {
		repl.Position = *p.Position
	}
	if p.Size != nil {
		size := *p.Size
		repl.Size = &size
	}
	if p.ParentID != nil {
		repl.ParentID = *p.ParentID
	}
	if p.Data != nil {
		repl.Data = p.Data
	}
	if p.Visible != nil {
		repl.Visible = *p.Visible
	}
	if p.Locked != nil {
		repl.Locked = *p.Locked
	}

	updated := []*graph.Node{repl}

	// Visibility and lock state cascade atomically through a group's
	// transitive descendants, in the same revision as the triggering
	// update.
	if (p.Visible != nil || p.Locked != nil) && env.Catalog != nil && env.Catalog.IsGroup(repl.Type) {
		for _, desc := range graph.GroupChildren(rev, n.ID) {
			dc := desc.Clone()
			if p.Visible != nil {
				dc.Visible = *p.Visible
			}
			if p.Locked != nil {
				dc.Locked = *p.Locked
			}
			updated = append(updated, dc)
		}
	}

	return rev.WithNodes(updated...)
}

func applyMove(rev *graph.Revision, positions map[graph.NodeID]graph.Vec2) *graph.Revision {
	var moved []*graph.Node
	for id, pos := range positions {
		n := rev.Node(id)
		if n == nil {
			continue
		}
		repl := n.Clone()
		repl.Position = pos
		moved = append(moved, repl)
	}
	return rev.WithNodes(moved...)
}

func applyConnect(rev *graph.Revision, a AddConnection) *graph.Revision {
	if rev.Node(a.FromNode) == nil || rev.Node(a.ToNode) == nil {
		return rev
	}
	return rev.WithConnection(&graph.Connection{
		ID:       graph.NewConnectionID(),
		FromNode: a.FromNode,
		FromPort: a.FromPort,
		ToNode:   a.ToNode,
		ToPort:   a.ToPort,
	})
}

func applyDuplicate(rev *graph.Revision, a DuplicateNodes, env Env) *graph.Revision {
	var created []*graph.Node
	for _, id := range a.IDs {
		n := rev.Node(id)
		if n == nil {
			continue
		}
		dup := n.Clone()
		dup.ID = graph.NewNodeID()
		dup.Position = n.Position.Add(graph.DuplicateOffset)
		dup.Title = duplicateTitle(n)
		dup.CreatedAt = env.now()
		if env.Catalog != nil && env.Catalog.IsGroup(n.Type) {
			dup.Children = nil
		}
		created = append(created, dup)
	}
	return rev.WithNodes(created...)
}

func duplicateTitle(n *graph.Node) string {
	title := n.Title
	if title == "" {
		title = n.Type
	}
	return title + " copy"
}

func applyGroup(rev *graph.Revision, a GroupNodes, env Env) *graph.Revision {
	var members []*graph.Node
	for _, id := range a.IDs {
		if n := rev.Node(id); n != nil {
			members = append(members, n)
		}
	}
	bounds, ok := graph.BoundsOf(members)
	if !ok {
		return rev
	}

	typ := a.Type
	if typ == "" && env.Catalog != nil {
		typ = env.Catalog.FirstGroupTag()
	}
	if typ == "" || (env.Catalog != nil && !env.Catalog.IsGroup(typ)) {
		return rev
	}

	id := a.GroupID
	if id.IsZero() {
		id = graph.NewNodeID()
	}
	box := bounds.Expand(graph.GroupMargin)
	group := &graph.Node{
		ID:        id,
		Type:      typ,
		Position:  box.Pos,
		Size:      &box.Size,
		Visible:   true,
		CreatedAt: env.now(),
	}
	return rev.WithNode(group)
}

func applyUngroup(rev *graph.Revision, a UngroupNode, env Env) *graph.Revision {
	n := rev.Node(a.ID)
	if n == nil || env.Catalog == nil || !env.Catalog.IsGroup(n.Type) {
		return rev
	}
	return graph.NormalizeMembership(rev.WithoutNode(a.ID))
}

func applyMembership(rev *graph.Revision, a UpdateGroupMembership) *graph.Revision {
	var updated []*graph.Node
	for id, parent := range a.Parents {
		n := rev.Node(id)
		if n == nil || n.ParentID == parent {
			continue
		}
		repl := n.Clone()
		repl.ParentID = parent
		updated = append(updated, repl)
	}
	next := rev.WithNodes(updated...)
	if next == rev {
		return rev
	}
	// Membership recomputation: references to groups not present in the
	// document are cleared rather than left dangling.
	return graph.NormalizeMembership(next)
}

func applyMoveGroup(rev *graph.Revision, a MoveGroupWithChildren) *graph.Revision {
	ids := make([]graph.NodeID, 0, len(a.AffectedIDs)+1)
	if !a.GroupID.IsZero() {
		ids = append(ids, a.GroupID)
	}
	ids = append(ids, a.AffectedIDs...)

	seen := make(map[graph.NodeID]bool, len(ids))
	var moved []*graph.Node
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		n := rev.Node(id)
		if n == nil {
			continue
		}
		repl := n.Clone()
		repl.Position = n.Position.Add(a.Delta)
		moved = append(moved, repl)
	}
	return rev.WithNodes(moved...)
}

func applyReplace(next *graph.Revision) *graph.Revision {
	if next == nil {
		return graph.NewRevision()
	}
	if next.Nodes == nil || next.Connections == nil {
		repl := &graph.Revision{Nodes: next.Nodes, Connections: next.Connections}
		if repl.Nodes == nil {
			repl.Nodes = make(map[graph.NodeID]*graph.Node)
		}
		if repl.Connections == nil {
			repl.Connections = make(map[graph.ConnectionID]*graph.Connection)
		}
		next = repl
	}
	return graph.NormalizeMembership(next)
}

func applyPaste(rev *graph.Revision, a PasteNodes, env Env) *graph.Revision {
	if env.Clipboard == nil {
		return rev
	}
	nodes, conns := env.Clipboard.Get().Paste(a.Offset)
	if len(nodes) == 0 {
		return rev
	}
	return rev.WithNodes(nodes...).WithConnections(conns...)
}
