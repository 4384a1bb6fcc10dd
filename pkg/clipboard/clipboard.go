// Package clipboard snapshots a node subset for copy/paste. The buffer
// lives outside any document revision: copying never mutates the
// document, and pasting mints entirely fresh identities so repeated
// pastes of one buffer cannot collide.
package clipboard

import (
	"sync"

	"github.com/chazu/patchboard/pkg/graph"
)

// Buffer is one copy snapshot: the selected nodes plus every connection
// whose both endpoints were inside the selection. The snapshot contents
// never change after Copy; only the paste generation advances, so
// repeated pastes of one buffer fan out by whole multiples of the
// offset instead of stacking on one spot.
type Buffer struct {
	nodes       []*graph.Node
	connections []*graph.Connection

	mu     sync.Mutex
	pastes int
}

// Copy snapshots the named nodes from the revision. Connections crossing
// the selection boundary are dropped; internal ones are kept. Missing
// ids are skipped. Returns nil when nothing was copied.
func Copy(rev *graph.Revision, ids []graph.NodeID) *Buffer {
	selected := make(map[graph.NodeID]bool, len(ids))
	var nodes []*graph.Node
	for _, id := range ids {
		n := rev.Node(id)
		if n == nil || selected[id] {
			continue
		}
		selected[id] = true
		copied := n.Clone()
		copied.Data = n.Data.Clone()
		nodes = append(nodes, copied)
	}
	if len(nodes) == 0 {
		return nil
	}

	var conns []*graph.Connection
	for _, c := range rev.Connections {
		if selected[c.FromNode] && selected[c.ToNode] {
			cc := *c
			conns = append(conns, &cc)
		}
	}
	return &Buffer{nodes: nodes, connections: conns}
}

// Len returns the number of nodes in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.nodes)
}

// Paste materializes the buffer at the given offset. Every node gets a
// fresh id through one consistent old-to-new map; connection endpoints
// are rewritten through the same map and connections get fresh ids too.
// Parent and child references pointing outside the buffer are cleared.
// The offset is multiplied by the paste generation: the first paste
// lands offset from the originals, the second twice as far, and so on.
func (b *Buffer) Paste(offset graph.Vec2) ([]*graph.Node, []*graph.Connection) {
	if b == nil || len(b.nodes) == 0 {
		return nil, nil
	}

	b.mu.Lock()
	b.pastes++
	scale := float64(b.pastes)
	b.mu.Unlock()
	step := graph.Vec2{X: offset.X * scale, Y: offset.Y * scale}

	idMap := make(map[graph.NodeID]graph.NodeID, len(b.nodes))
	for _, n := range b.nodes {
		idMap[n.ID] = graph.NewNodeID()
	}

	nodes := make([]*graph.Node, 0, len(b.nodes))
	for _, n := range b.nodes {
		pasted := n.Clone()
		pasted.Data = n.Data.Clone()
		pasted.ID = idMap[n.ID]
		pasted.Position = n.Position.Add(step)
		if newParent, ok := idMap[n.ParentID]; ok {
			pasted.ParentID = newParent
		} else {
			pasted.ParentID = ""
		}
		if n.Children != nil {
			var children []graph.NodeID
			for _, child := range n.Children {
				if newChild, ok := idMap[child]; ok {
					children = append(children, newChild)
				}
			}
			pasted.Children = children
		}
		nodes = append(nodes, pasted)
	}

	conns := make([]*graph.Connection, 0, len(b.connections))
	for _, c := range b.connections {
		conns = append(conns, &graph.Connection{
			ID:       graph.NewConnectionID(),
			FromNode: idMap[c.FromNode],
			FromPort: c.FromPort,
			ToNode:   idMap[c.ToNode],
			ToPort:   c.ToPort,
		})
	}
	return nodes, conns
}

// Clipboard is the mutable holder of the current buffer, owned by one
// store instance.
type Clipboard struct {
	mu  sync.Mutex
	buf *Buffer
}

// New returns an empty clipboard.
func New() *Clipboard {
	return &Clipboard{}
}

// Set replaces the held buffer. A nil buffer clears the clipboard.
func (c *Clipboard) Set(b *Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = b
}

// Get returns the held buffer, or nil.
func (c *Clipboard) Get() *Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}
