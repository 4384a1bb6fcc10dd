package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node within a document.
type NodeID string

// ConnectionID uniquely identifies a connection within a document.
type ConnectionID string

// PortID identifies a port on its owning node. Port ids are only unique
// per node; use PortKey for a document-wide key.
type PortID string

// NewNodeID returns a fresh random node id.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// NewConnectionID returns a fresh random connection id.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// IsZero reports whether the id is unset.
func (id NodeID) IsZero() bool { return id == "" }

// Short returns an abbreviated form of the id for log and error messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

func (id NodeID) String() string       { return string(id) }
func (id ConnectionID) String() string { return string(id) }
func (id PortID) String() string       { return string(id) }

// PortKey is the document-wide composite key for a port endpoint.
type PortKey string

// MakePortKey builds the canonical "nodeID:portID" key.
func MakePortKey(node NodeID, port PortID) PortKey {
	return PortKey(fmt.Sprintf("%s:%s", node, port))
}
