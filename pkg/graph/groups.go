package graph

// GroupPredicate reports whether a type tag denotes a group-capable
// node type. It is supplied by the type catalog.
type GroupPredicate func(typeTag string) bool

// IsNodeInsideGroup reports whether the node's position lies inside the
// group's bounds. Purely geometric; callers decide group capability.
func IsNodeInsideGroup(node, group *Node) bool {
	if node == nil || group == nil || node.ID == group.ID {
		return false
	}
	return group.Bounds().Contains(node.Position)
}

// FindContainingGroup returns the innermost group-capable node whose
// bounds contain the node's position, or nil. Innermost means smallest
// area among the containing candidates.
func FindContainingGroup(node *Node, rev *Revision, isGroup GroupPredicate) *Node {
	if node == nil || rev == nil || isGroup == nil {
		return nil
	}
	var best *Node
	var bestArea float64
	for _, cand := range rev.Nodes {
		if !isGroup(cand.Type) {
			continue
		}
		if !IsNodeInsideGroup(node, cand) {
			continue
		}
		area := cand.Bounds().Area()
		if best == nil || area < bestArea {
			best = cand
			bestArea = area
		}
	}
	return best
}

// GroupChildren returns every node whose ParentID chain resolves to the
// given group, i.e. all transitive descendants. Cyclic parent chains
// terminate the walk rather than looping.
func GroupChildren(rev *Revision, groupID NodeID) []*Node {
	if rev == nil || groupID.IsZero() {
		return nil
	}
	var out []*Node
	for _, n := range rev.Nodes {
		if n.ID == groupID {
			continue
		}
		seen := map[NodeID]bool{n.ID: true}
		for cur := n; !cur.ParentID.IsZero(); {
			if cur.ParentID == groupID {
				out = append(out, n)
				break
			}
			next := rev.Node(cur.ParentID)
			if next == nil || seen[next.ID] {
				break
			}
			seen[next.ID] = true
			cur = next
		}
	}
	return out
}

// NormalizeMembership clears every ParentID that references a node no
// longer present in the revision, so stale group references never
// dangle. Returns the receiver's revision unchanged when nothing needed
// clearing.
func NormalizeMembership(rev *Revision) *Revision {
	var fixed []*Node
	for _, n := range rev.Nodes {
		if n.ParentID.IsZero() {
			continue
		}
		if rev.Node(n.ParentID) != nil {
			continue
		}
		repl := n.Clone()
		repl.ParentID = ""
		fixed = append(fixed, repl)
	}
	return rev.WithNodes(fixed...)
}
