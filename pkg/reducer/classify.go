package reducer

import "github.com/chazu/patchboard/pkg/graph"

// ChangeSummary describes one committed transition for downstream cache
// maintenance and subscriber routing.
type ChangeSummary struct {
	// ChangedNodeIDs lists nodes added or replaced in this transition.
	// Empty under FullResync; consumers then rescan everything.
	ChangedNodeIDs []graph.NodeID

	// RemovedNodeIDs lists nodes present before and gone after.
	RemovedNodeIDs []graph.NodeID

	FullResync         bool
	AffectsGeometry    bool
	AffectsPorts       bool
	AffectsNodeOrder   bool
	AffectsConnections bool
}

// Classify produces the change summary for one reducer step. It is pure
// over (previous, next, action).
func Classify(prev, next *graph.Revision, act Action) ChangeSummary {
	sum := ChangeSummary{
		AffectsConnections: !graph.SameConnections(prev, next),
	}

	switch a := act.(type) {
	case SetDocument, RestoreDocument:
		sum.FullResync = true
		sum.AffectsGeometry = true
		sum.AffectsPorts = true
		sum.AffectsNodeOrder = true
		sum.AffectsConnections = true
		return sum

	case AddNode, AddNodeWithID, DeleteNode, DuplicateNodes, GroupNodes, UngroupNode, PasteNodes:
		sum.AffectsNodeOrder = true
		sum.AffectsGeometry = true
		sum.AffectsPorts = true

	case UpdateNode:
		sum.AffectsPorts = true // port derivation may depend on any data field
		sum.AffectsNodeOrder = a.Patch.Type != nil
		sum.AffectsGeometry = a.Patch.Position != nil || a.Patch.Size != nil || a.Patch.Visible != nil

	case MoveNode, MoveNodes, MoveGroupWithChildren:
		sum.AffectsGeometry = true

	case UpdateGroupMembership:
		sum.AffectsPorts = true // group restructuring

	case AddConnection, DeleteConnection, PruneConnectionsAction:
		// Connection-map identity above covers these.

	case CopyNodes, AutoLayout:
		// Document unchanged.
	}

	if !graph.SameNodes(prev, next) {
		sum.ChangedNodeIDs, sum.RemovedNodeIDs = diffNodes(prev, next)
	}
	return sum
}

// diffNodes computes exact changed and removed ids by pointer-comparing
// the two node maps. Nodes are only ever replaced, never mutated in
// place, so pointer inequality is change.
func diffNodes(prev, next *graph.Revision) (changed, removed []graph.NodeID) {
	for id, n := range next.Nodes {
		if prev.Nodes[id] != n {
			changed = append(changed, id)
		}
	}
	for id := range prev.Nodes {
		if _, ok := next.Nodes[id]; !ok {
			removed = append(removed, id)
		}
	}
	return changed, removed
}
