package graph

import "time"

// NodeData is the opaque per-instance payload of a node. The map is
// replaced wholesale on every update, never mutated in place, so its
// identity doubles as a cheap change marker for port derivation.
type NodeData map[string]any

// Clone returns a shallow copy of the data map.
func (d NodeData) Clone() NodeData {
	if d == nil {
		return nil
	}
	out := make(NodeData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Node is a single element of the document: a typed box on the canvas,
// optionally belonging to a group via ParentID.
type Node struct {
	ID        NodeID    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title,omitempty"`
	Position  Vec2      `json:"position"`
	Size      *Size     `json:"size,omitempty"`
	ParentID  NodeID    `json:"parent_id,omitempty"`
	Children  []NodeID  `json:"children,omitempty"` // ordered member ids, group nodes only
	Data      NodeData  `json:"data,omitempty"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy of the node safe to modify independently. The
// Data map is shared: node data is replaced, never edited in place.
func (n *Node) Clone() *Node {
	out := *n
	if n.Children != nil {
		out.Children = append([]NodeID(nil), n.Children...)
	}
	return &out
}

// Bounds returns the node's rectangle, assuming DefaultNodeSize when the
// node carries no explicit size.
func (n *Node) Bounds() Rect {
	size := DefaultNodeSize
	if n.Size != nil {
		size = *n.Size
	}
	return Rect{Pos: n.Position, Size: size}
}

// Connection joins an output port of one node to an input port of
// another.
type Connection struct {
	ID       ConnectionID `json:"id"`
	FromNode NodeID       `json:"from_node"`
	FromPort PortID       `json:"from_port"`
	ToNode   NodeID       `json:"to_node"`
	ToPort   PortID       `json:"to_port"`
}

// Touches reports whether either endpoint belongs to the given node.
func (c *Connection) Touches(id NodeID) bool {
	return c.FromNode == id || c.ToNode == id
}

// FromKey returns the document-wide key of the source endpoint.
func (c *Connection) FromKey() PortKey {
	return MakePortKey(c.FromNode, c.FromPort)
}

// ToKey returns the document-wide key of the target endpoint.
func (c *Connection) ToKey() PortKey {
	return MakePortKey(c.ToNode, c.ToPort)
}
