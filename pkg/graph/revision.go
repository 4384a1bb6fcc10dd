package graph

import "reflect"

// Revision is one immutable snapshot of the document. It is never
// mutated in place; every transform returns a new Revision sharing the
// untouched map, so map identity doubles as a cheap "did anything
// change" check.
type Revision struct {
	Nodes       map[NodeID]*Node
	Connections map[ConnectionID]*Connection
}

// NewRevision returns an empty document snapshot.
func NewRevision() *Revision {
	return &Revision{
		Nodes:       make(map[NodeID]*Node),
		Connections: make(map[ConnectionID]*Connection),
	}
}

// Node returns the node with the given id, or nil.
func (r *Revision) Node(id NodeID) *Node {
	return r.Nodes[id]
}

// Connection returns the connection with the given id, or nil.
func (r *Revision) Connection(id ConnectionID) *Connection {
	return r.Connections[id]
}

// NodeCount returns the number of nodes in the snapshot.
func (r *Revision) NodeCount() int { return len(r.Nodes) }

// ConnectionCount returns the number of connections in the snapshot.
func (r *Revision) ConnectionCount() int { return len(r.Connections) }

func (r *Revision) cloneNodes() map[NodeID]*Node {
	out := make(map[NodeID]*Node, len(r.Nodes)+1)
	for id, n := range r.Nodes {
		out[id] = n
	}
	return out
}

func (r *Revision) cloneConnections() map[ConnectionID]*Connection {
	out := make(map[ConnectionID]*Connection, len(r.Connections)+1)
	for id, c := range r.Connections {
		out[id] = c
	}
	return out
}

// WithNode returns a new revision with the node inserted or replaced.
func (r *Revision) WithNode(n *Node) *Revision {
	nodes := r.cloneNodes()
	nodes[n.ID] = n
	return &Revision{Nodes: nodes, Connections: r.Connections}
}

// WithNodes returns a new revision with all given nodes inserted or
// replaced. Returns the receiver unchanged when the slice is empty.
func (r *Revision) WithNodes(ns ...*Node) *Revision {
	if len(ns) == 0 {
		return r
	}
	nodes := r.cloneNodes()
	for _, n := range ns {
		nodes[n.ID] = n
	}
	return &Revision{Nodes: nodes, Connections: r.Connections}
}

// WithoutNode returns a new revision with the node and every connection
// touching it removed. Returns the receiver unchanged when the id is
// absent, so stale deletes stay cheap no-ops.
func (r *Revision) WithoutNode(id NodeID) *Revision {
	if _, ok := r.Nodes[id]; !ok {
		return r
	}
	nodes := r.cloneNodes()
	delete(nodes, id)
	conns := r.Connections
	cloned := false
	for cid, c := range r.Connections {
		if c.Touches(id) {
			if !cloned {
				conns = r.cloneConnections()
				cloned = true
			}
			delete(conns, cid)
		}
	}
	return &Revision{Nodes: nodes, Connections: conns}
}

// WithConnection returns a new revision with the connection inserted or
// replaced.
func (r *Revision) WithConnection(c *Connection) *Revision {
	conns := r.cloneConnections()
	conns[c.ID] = c
	return &Revision{Nodes: r.Nodes, Connections: conns}
}

// WithConnections returns a new revision with all given connections
// inserted. Returns the receiver unchanged when the slice is empty.
func (r *Revision) WithConnections(cs ...*Connection) *Revision {
	if len(cs) == 0 {
		return r
	}
	conns := r.cloneConnections()
	for _, c := range cs {
		conns[c.ID] = c
	}
	return &Revision{Nodes: r.Nodes, Connections: conns}
}

// WithoutConnection returns a new revision with the connection removed,
// or the receiver unchanged when the id is absent.
func (r *Revision) WithoutConnection(id ConnectionID) *Revision {
	if _, ok := r.Connections[id]; !ok {
		return r
	}
	conns := r.cloneConnections()
	delete(conns, id)
	return &Revision{Nodes: r.Nodes, Connections: conns}
}

// ReplaceConnections returns a new revision with the entire connection
// map swapped out.
func (r *Revision) ReplaceConnections(conns map[ConnectionID]*Connection) *Revision {
	return &Revision{Nodes: r.Nodes, Connections: conns}
}

// SameNodes reports whether the two revisions share the node map.
func SameNodes(a, b *Revision) bool {
	return reflect.ValueOf(a.Nodes).Pointer() == reflect.ValueOf(b.Nodes).Pointer()
}

// SameConnections reports whether the two revisions share the
// connection map.
func SameConnections(a, b *Revision) bool {
	return reflect.ValueOf(a.Connections).Pointer() == reflect.ValueOf(b.Connections).Pointer()
}
