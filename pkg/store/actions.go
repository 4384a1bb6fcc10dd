package store

import (
	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/reducer"
)

// Bound action creators. Each builds the action and dispatches it;
// callers that need the raw actions use pkg/reducer directly.

func (s *Store) AddNode(typeTag string, pos graph.Vec2) {
	s.Dispatch(reducer.AddNode{Type: typeTag, Position: pos})
}

func (s *Store) AddNodeWithID(id graph.NodeID, typeTag string, pos graph.Vec2) {
	s.Dispatch(reducer.AddNodeWithID{ID: id, Type: typeTag, Position: pos})
}

func (s *Store) UpdateNode(id graph.NodeID, patch reducer.NodePatch) {
	s.Dispatch(reducer.UpdateNode{ID: id, Patch: patch})
}

func (s *Store) DeleteNode(id graph.NodeID) {
	s.Dispatch(reducer.DeleteNode{ID: id})
}

func (s *Store) MoveNode(id graph.NodeID, pos graph.Vec2) {
	s.Dispatch(reducer.MoveNode{ID: id, Position: pos})
}

func (s *Store) MoveNodes(positions map[graph.NodeID]graph.Vec2) {
	s.Dispatch(reducer.MoveNodes{Positions: positions})
}

func (s *Store) Connect(fromNode graph.NodeID, fromPort graph.PortID, toNode graph.NodeID, toPort graph.PortID) {
	s.Dispatch(reducer.AddConnection{FromNode: fromNode, FromPort: fromPort, ToNode: toNode, ToPort: toPort})
}

func (s *Store) Disconnect(id graph.ConnectionID) {
	s.Dispatch(reducer.DeleteConnection{ID: id})
}

func (s *Store) DuplicateNodes(ids ...graph.NodeID) {
	s.Dispatch(reducer.DuplicateNodes{IDs: ids})
}

func (s *Store) GroupNodes(ids ...graph.NodeID) {
	s.Dispatch(reducer.GroupNodes{IDs: ids})
}

func (s *Store) UngroupNode(id graph.NodeID) {
	s.Dispatch(reducer.UngroupNode{ID: id})
}

func (s *Store) UpdateGroupMembership(parents map[graph.NodeID]graph.NodeID) {
	s.Dispatch(reducer.UpdateGroupMembership{Parents: parents})
}

func (s *Store) MoveGroupWithChildren(groupID graph.NodeID, delta graph.Vec2, affected ...graph.NodeID) {
	s.Dispatch(reducer.MoveGroupWithChildren{GroupID: groupID, Delta: delta, AffectedIDs: affected})
}

func (s *Store) SetDocument(rev *graph.Revision) {
	s.Dispatch(reducer.SetDocument{Revision: rev})
}

func (s *Store) RestoreDocument(rev *graph.Revision) {
	s.Dispatch(reducer.RestoreDocument{Revision: rev})
}

func (s *Store) PruneInvalidConnections() {
	s.Dispatch(reducer.PruneConnectionsAction{})
}

func (s *Store) CopyNodes(ids ...graph.NodeID) {
	s.Dispatch(reducer.CopyNodes{IDs: ids})
}

func (s *Store) PasteNodes(offset graph.Vec2) {
	s.Dispatch(reducer.PasteNodes{Offset: offset})
}

func (s *Store) AutoLayout() {
	s.Dispatch(reducer.AutoLayout{})
}
