package reducer

import "github.com/chazu/patchboard/pkg/graph"

// Action is one named document mutation. The set is closed: the reducer
// treats any kind it does not know as a no-op, never an error.
type Action interface {
	Kind() string
}

// NodePatch is a partial node update; nil fields are left untouched.
// A non-nil ParentID pointing at the zero NodeID clears membership.
type NodePatch struct {
	Type     *string
	Title    *string
	Position *graph.Vec2
	Size     *graph.Size
	ParentID *graph.NodeID
	Data     graph.NodeData
	Visible  *bool
	Locked   *bool
}

// AddNode inserts a new node with a generated id.
type AddNode struct {
	Type     string
	Position graph.Vec2
	Title    string
	Data     graph.NodeData
}

// AddNodeWithID inserts a new node under a caller-chosen id.
type AddNodeWithID struct {
	ID       graph.NodeID
	Type     string
	Position graph.Vec2
	Title    string
	Data     graph.NodeData
}

// UpdateNode merges a patch into the named node. If the patch touches
// Visible or Locked and the node is group-capable, the same values
// cascade to every transitive descendant in the same revision.
type UpdateNode struct {
	ID    graph.NodeID
	Patch NodePatch
}

// DeleteNode removes the node and every connection touching it.
type DeleteNode struct {
	ID graph.NodeID
}

// MoveNode is a position-only update of one node.
type MoveNode struct {
	ID       graph.NodeID
	Position graph.Vec2
}

// MoveNodes is a batched position-only update.
type MoveNodes struct {
	Positions map[graph.NodeID]graph.Vec2
}

// AddConnection inserts a connection between two existing nodes. Port
// validity is not checked here; the pruner reconciles later. The
// AllowMultiToPort flag is carried for the caller's own validation
// layer and not enforced by the reducer.
type AddConnection struct {
	FromNode         graph.NodeID
	FromPort         graph.PortID
	ToNode           graph.NodeID
	ToPort           graph.PortID
	AllowMultiToPort bool
}

// DeleteConnection removes one connection.
type DeleteConnection struct {
	ID graph.ConnectionID
}

// DuplicateNodes clones the named nodes under fresh ids, offset by
// graph.DuplicateOffset. Duplicated group nodes start with an empty
// child list; duplication does not deep-clone group contents.
type DuplicateNodes struct {
	IDs []graph.NodeID
}

// GroupNodes synthesizes a new group node sized to enclose the named
// nodes with graph.GroupMargin padding. It does not reparent the
// members; membership is a separate update. Type may name a
// group-capable type; when empty the catalog's first group type is
// used. GroupID may pin the new node's id.
type GroupNodes struct {
	IDs     []graph.NodeID
	GroupID graph.NodeID
	Type    string
}

// UngroupNode removes the named node if it is of a group-capable type;
// otherwise it is a no-op.
type UngroupNode struct {
	ID graph.NodeID
}

// UpdateGroupMembership reassigns ParentID in bulk. The zero NodeID
// clears membership.
type UpdateGroupMembership struct {
	Parents map[graph.NodeID]graph.NodeID
}

// MoveGroupWithChildren applies one position delta to the group and to
// an explicit list of affected node ids. The caller is responsible for
// computing which descendants are affected.
type MoveGroupWithChildren struct {
	GroupID     graph.NodeID
	Delta       graph.Vec2
	AffectedIDs []graph.NodeID
}

// SetDocument replaces the whole document, used for load.
type SetDocument struct {
	Revision *graph.Revision
}

// RestoreDocument replaces the whole document from an external restore.
type RestoreDocument struct {
	Revision *graph.Revision
}

// PruneConnectionsAction removes connections whose endpoints no longer
// resolve under the current catalog.
type PruneConnectionsAction struct{}

// CopyNodes snapshots the named nodes into the clipboard. The document
// itself is unchanged.
type CopyNodes struct {
	IDs []graph.NodeID
}

// PasteNodes materializes the clipboard buffer at the given offset.
type PasteNodes struct {
	Offset graph.Vec2
}

// AutoLayout is accepted as a no-op placeholder; layout computation is
// an external collaborator.
type AutoLayout struct{}

func (AddNode) Kind() string                { return "addNode" }
func (AddNodeWithID) Kind() string          { return "addNodeWithId" }
func (UpdateNode) Kind() string             { return "updateNode" }
func (DeleteNode) Kind() string             { return "deleteNode" }
func (MoveNode) Kind() string               { return "moveNode" }
func (MoveNodes) Kind() string              { return "moveNodes" }
func (AddConnection) Kind() string          { return "addConnection" }
func (DeleteConnection) Kind() string       { return "deleteConnection" }
func (DuplicateNodes) Kind() string         { return "duplicateNodes" }
func (GroupNodes) Kind() string             { return "groupNodes" }
func (UngroupNode) Kind() string            { return "ungroupNode" }
func (UpdateGroupMembership) Kind() string  { return "updateGroupMembership" }
func (MoveGroupWithChildren) Kind() string  { return "moveGroupWithChildren" }
func (SetDocument) Kind() string            { return "setDocument" }
func (RestoreDocument) Kind() string        { return "restoreDocument" }
func (PruneConnectionsAction) Kind() string { return "pruneInvalidConnections" }
func (CopyNodes) Kind() string              { return "copyNodes" }
func (PasteNodes) Kind() string             { return "pasteNodes" }
func (AutoLayout) Kind() string             { return "autoLayout" }
