package graph

import "testing"

func groupNode(id NodeID, pos Vec2, size Size) *Node {
	return &Node{ID: id, Type: "group", Position: pos, Size: &size, Visible: true}
}

func isGroupType(tag string) bool { return tag == "group" }

func TestBoundsOf(t *testing.T) {
	a := testNode("a", "process")
	a.Position = Vec2{X: 0, Y: 0}
	b := testNode("b", "process")
	b.Position = Vec2{X: 300, Y: 100}
	b.Size = &Size{W: 50, H: 20}

	bounds, ok := BoundsOf([]*Node{a, b})
	if !ok {
		t.Fatal("BoundsOf returned not-ok for non-empty input")
	}
	if bounds.Pos.X != 0 || bounds.Pos.Y != 0 {
		t.Errorf("bounds origin = %+v, want (0,0)", bounds.Pos)
	}
	// a has no explicit size, so DefaultNodeSize applies.
	wantW := 350.0
	wantH := 120.0
	if bounds.Size.W != wantW || bounds.Size.H != wantH {
		t.Errorf("bounds size = %+v, want (%v,%v)", bounds.Size, wantW, wantH)
	}

	if _, ok := BoundsOf(nil); ok {
		t.Error("BoundsOf(nil) should report not-ok")
	}
}

func TestIsNodeInsideGroup(t *testing.T) {
	g := groupNode("g", Vec2{X: 0, Y: 0}, Size{W: 200, H: 200})

	tests := []struct {
		name string
		pos  Vec2
		want bool
	}{
		{"center", Vec2{X: 100, Y: 100}, true},
		{"edge", Vec2{X: 200, Y: 200}, true},
		{"outside", Vec2{X: 201, Y: 100}, false},
		{"negative", Vec2{X: -1, Y: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := testNode("n", "process")
			n.Position = tt.pos
			if got := IsNodeInsideGroup(n, g); got != tt.want {
				t.Errorf("IsNodeInsideGroup(%+v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}

	if IsNodeInsideGroup(g, g) {
		t.Error("a node is never inside itself")
	}
}

func TestFindContainingGroupInnermost(t *testing.T) {
	outer := groupNode("outer", Vec2{X: 0, Y: 0}, Size{W: 500, H: 500})
	inner := groupNode("inner", Vec2{X: 50, Y: 50}, Size{W: 100, H: 100})
	n := testNode("n", "process")
	n.Position = Vec2{X: 60, Y: 60}

	rev := NewRevision().WithNodes(outer, inner, n)

	got := FindContainingGroup(n, rev, isGroupType)
	if got == nil || got.ID != "inner" {
		t.Fatalf("FindContainingGroup = %v, want inner", got)
	}

	// A node outside every group resolves to nil.
	far := testNode("far", "process")
	far.Position = Vec2{X: 1000, Y: 1000}
	rev = rev.WithNode(far)
	if FindContainingGroup(far, rev, isGroupType) != nil {
		t.Error("expected nil for a node outside all groups")
	}

	// Non-group types never contain.
	big := testNode("big", "process")
	big.Position = Vec2{X: 0, Y: 0}
	big.Size = &Size{W: 2000, H: 2000}
	rev = rev.WithNode(big)
	if g := FindContainingGroup(far, rev, isGroupType); g != nil {
		t.Errorf("non-group node must not act as container, got %v", g.ID)
	}
}

func TestGroupChildrenTransitive(t *testing.T) {
	g := groupNode("g", Vec2{}, Size{W: 400, H: 400})
	c := testNode("c", "process")
	c.ParentID = "g"
	d := testNode("d", "process")
	d.ParentID = "c"
	other := testNode("other", "process")

	rev := NewRevision().WithNodes(g, c, d, other)

	children := GroupChildren(rev, "g")
	if len(children) != 2 {
		t.Fatalf("children count = %d, want 2", len(children))
	}
	ids := map[NodeID]bool{}
	for _, n := range children {
		ids[n.ID] = true
	}
	if !ids["c"] || !ids["d"] {
		t.Errorf("children = %v, want c and d", ids)
	}
}

func TestGroupChildrenCyclicParentChain(t *testing.T) {
	a := testNode("a", "process")
	a.ParentID = "b"
	b := testNode("b", "process")
	b.ParentID = "a"
	rev := NewRevision().WithNodes(a, b)

	// Must terminate and find nothing.
	if got := GroupChildren(rev, "g"); len(got) != 0 {
		t.Errorf("cyclic chain produced children %v", got)
	}
}

func TestNormalizeMembershipClearsDanglingParent(t *testing.T) {
	x := testNode("x", "process")
	x.ParentID = "missing-group"
	ok := testNode("ok", "process")
	g := groupNode("g", Vec2{}, Size{W: 10, H: 10})
	ok.ParentID = "g"

	rev := NewRevision().WithNodes(x, ok, g)
	next := NormalizeMembership(rev)

	if next == rev {
		t.Fatal("normalization should have produced a new revision")
	}
	if !next.Node("x").ParentID.IsZero() {
		t.Error("dangling parent reference should be cleared")
	}
	if next.Node("ok").ParentID != "g" {
		t.Error("valid parent reference should be preserved")
	}

	// Second pass is a no-op with preserved identity.
	if NormalizeMembership(next) != next {
		t.Error("normalizing a clean revision should return it unchanged")
	}
}
