package reducer

import (
	"testing"

	"github.com/chazu/patchboard/pkg/graph"
)

func TestClassifyMoveNode(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().WithNode(node("a", "process", graph.Vec2{}))
	act := MoveNode{ID: "a", Position: graph.Vec2{X: 7, Y: 7}}
	next := Apply(rev, act, env)

	sum := Classify(rev, next, act)
	if !sum.AffectsGeometry {
		t.Error("move affects geometry")
	}
	if sum.AffectsNodeOrder || sum.AffectsPorts || sum.AffectsConnections || sum.FullResync {
		t.Errorf("move must only affect geometry: %+v", sum)
	}
	if len(sum.ChangedNodeIDs) != 1 || sum.ChangedNodeIDs[0] != "a" {
		t.Errorf("changed ids = %v, want [a]", sum.ChangedNodeIDs)
	}
}

func TestClassifyUpdateNodeTypePatch(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().WithNode(node("a", "process", graph.Vec2{}))

	typ := "timer"
	act := UpdateNode{ID: "a", Patch: NodePatch{Type: &typ}}
	sum := Classify(rev, Apply(rev, act, env), act)
	if !sum.AffectsNodeOrder {
		t.Error("retype affects node order")
	}
	if !sum.AffectsPorts {
		t.Error("every update conservatively affects ports")
	}
	if sum.AffectsGeometry {
		t.Error("type-only patch does not affect geometry")
	}

	// Data-only patch: ports yes, order no.
	act2 := UpdateNode{ID: "a", Patch: NodePatch{Data: graph.NodeData{"k": 1}}}
	sum2 := Classify(rev, Apply(rev, act2, env), act2)
	if sum2.AffectsNodeOrder || !sum2.AffectsPorts {
		t.Errorf("data patch summary: %+v", sum2)
	}
}

func TestClassifyConnections(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().
		WithNodes(node("a", "process", graph.Vec2{}), node("b", "process", graph.Vec2{}))

	act := AddConnection{FromNode: "a", FromPort: "out", ToNode: "b", ToPort: "in"}
	next := Apply(rev, act, env)
	sum := Classify(rev, next, act)
	if !sum.AffectsConnections {
		t.Error("addConnection affects connections")
	}
	if sum.AffectsNodeOrder || sum.AffectsGeometry || sum.AffectsPorts {
		t.Errorf("addConnection affects only connections: %+v", sum)
	}
	if len(sum.ChangedNodeIDs) != 0 {
		t.Errorf("no node changed: %v", sum.ChangedNodeIDs)
	}

	// A no-op prune leaves connection identity alone.
	pruned := Apply(next, PruneConnectionsAction{}, env)
	pruneSum := Classify(next, pruned, PruneConnectionsAction{})
	if pruneSum.AffectsConnections {
		t.Error("no-op prune must not report a connection change")
	}
}

func TestClassifyDeleteNode(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().WithNode(node("a", "process", graph.Vec2{}))
	act := DeleteNode{ID: "a"}
	sum := Classify(rev, Apply(rev, act, env), act)

	if len(sum.RemovedNodeIDs) != 1 || sum.RemovedNodeIDs[0] != "a" {
		t.Errorf("removed ids = %v, want [a]", sum.RemovedNodeIDs)
	}
	if len(sum.ChangedNodeIDs) != 0 {
		t.Errorf("changed ids = %v, want empty", sum.ChangedNodeIDs)
	}
	if !sum.AffectsNodeOrder || !sum.AffectsPorts {
		t.Errorf("delete summary: %+v", sum)
	}
}

func TestClassifyDuplicateReportsExactIDs(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().WithNode(node("a", "process", graph.Vec2{}))
	act := DuplicateNodes{IDs: []graph.NodeID{"a"}}
	next := Apply(rev, act, env)

	sum := Classify(rev, next, act)
	if len(sum.ChangedNodeIDs) != 1 {
		t.Fatalf("changed ids = %v, want exactly the duplicate", sum.ChangedNodeIDs)
	}
	if sum.ChangedNodeIDs[0] == "a" {
		t.Error("the unchanged original must not be reported")
	}
}

func TestClassifyFullResync(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().WithNode(node("a", "process", graph.Vec2{}))
	act := RestoreDocument{Revision: graph.NewRevision()}
	sum := Classify(rev, Apply(rev, act, env), act)

	if !sum.FullResync {
		t.Error("document replacement is a full resync")
	}
	if !sum.AffectsNodeOrder || !sum.AffectsPorts || !sum.AffectsGeometry || !sum.AffectsConnections {
		t.Errorf("full resync sets every flag: %+v", sum)
	}
	if len(sum.ChangedNodeIDs) != 0 {
		t.Error("full resync leaves changed ids empty; consumers rescan")
	}
}

func TestClassifyCopyIsInert(t *testing.T) {
	env := testEnv()
	rev := graph.NewRevision().WithNode(node("a", "process", graph.Vec2{}))
	act := CopyNodes{IDs: []graph.NodeID{"a"}}
	sum := Classify(rev, Apply(rev, act, env), act)

	if sum.AffectsGeometry || sum.AffectsPorts || sum.AffectsNodeOrder || sum.AffectsConnections || sum.FullResync {
		t.Errorf("copy changes nothing: %+v", sum)
	}
	if len(sum.ChangedNodeIDs) != 0 || len(sum.RemovedNodeIDs) != 0 {
		t.Errorf("copy reports no ids: %+v", sum)
	}
}

func TestClassifyCascadeIncludesDescendants(t *testing.T) {
	env := testEnv()
	g := node("g", "frame", graph.Vec2{})
	c := node("c", "process", graph.Vec2{})
	c.ParentID = "g"
	rev := graph.NewRevision().WithNodes(g, c)

	hidden := false
	act := UpdateNode{ID: "g", Patch: NodePatch{Visible: &hidden}}
	sum := Classify(rev, Apply(rev, act, env), act)

	if len(sum.ChangedNodeIDs) != 2 {
		t.Errorf("cascade should report both nodes, got %v", sum.ChangedNodeIDs)
	}
}
