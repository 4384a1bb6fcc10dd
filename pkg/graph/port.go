package graph

// PortRole distinguishes input from output ports.
type PortRole int

const (
	PortIn  PortRole = iota // accepts incoming connections
	PortOut                 // originates outgoing connections
)

func (r PortRole) String() string {
	switch r {
	case PortIn:
		return "in"
	case PortOut:
		return "out"
	default:
		return "unknown"
	}
}

// Port is a named connection endpoint on a node. Ports are derived from
// the node's type definition and instance data; they are never stored in
// a revision.
type Port struct {
	ID       PortID   `json:"id"`
	NodeID   NodeID   `json:"node_id"`
	Role     PortRole `json:"role"`
	DataType string   `json:"data_type,omitempty"`
	Label    string   `json:"label,omitempty"`
	MaxConns int      `json:"max_conns,omitempty"` // 0 = unlimited
}

// Key returns the document-wide composite key of the port.
func (p Port) Key() PortKey {
	return MakePortKey(p.NodeID, p.ID)
}
