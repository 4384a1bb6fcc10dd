// Package derived maintains the caches computed from a revision: render
// order and the connected-port indexes. Recomputation is gated on the
// change summary, and recomputed values are diffed per key against the
// previous generation so unchanged entries keep reference identity;
// consumers comparing by reference then skip work for unrelated nodes.
package derived

import (
	"sort"

	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/reducer"
)

// Maintainer owns the derived caches of exactly one store instance.
type Maintainer struct {
	isGroup graph.GroupPredicate

	sorted    []graph.NodeID
	connected map[graph.PortKey]struct{}
	byNode    map[graph.NodeID]map[graph.PortID]struct{}
}

// NewMaintainer returns a maintainer with empty caches. The predicate
// decides which type tags sort as groups.
func NewMaintainer(isGroup graph.GroupPredicate) *Maintainer {
	return &Maintainer{
		isGroup:   isGroup,
		sorted:    []graph.NodeID{},
		connected: map[graph.PortKey]struct{}{},
		byNode:    map[graph.NodeID]map[graph.PortID]struct{}{},
	}
}

// Update brings the caches in line with the revision, recomputing only
// what the summary marks as affected. It reports which cache families
// actually changed identity, for subscriber routing.
func (m *Maintainer) Update(rev *graph.Revision, sum reducer.ChangeSummary) (orderChanged, connChanged bool) {
	if sum.FullResync || sum.AffectsNodeOrder {
		next := m.renderOrder(rev)
		if !equalIDs(m.sorted, next) {
			m.sorted = next
			orderChanged = true
		}
	}
	if sum.FullResync || sum.AffectsConnections {
		flat, byNode := m.connectionIndexes(rev)
		if !equalKeySets(m.connected, flat) {
			m.connected = flat
			connChanged = true
		}
		if stabilized, changed := m.stabilizeByNode(byNode); changed {
			m.byNode = stabilized
			connChanged = true
		}
	}
	return orderChanged, connChanged
}

// SortedNodeIDs returns the cached render order: group-type nodes
// first, ties broken by id. Callers must not modify the slice.
func (m *Maintainer) SortedNodeIDs() []graph.NodeID {
	return m.sorted
}

// ConnectedPorts returns the cached set of port keys that are an
// endpoint of any connection.
func (m *Maintainer) ConnectedPorts() map[graph.PortKey]struct{} {
	return m.connected
}

// ConnectedPortIDsByNode returns the cached per-node connected-port-id
// sets.
func (m *Maintainer) ConnectedPortIDsByNode() map[graph.NodeID]map[graph.PortID]struct{} {
	return m.byNode
}

func (m *Maintainer) renderOrder(rev *graph.Revision) []graph.NodeID {
	ids := make([]graph.NodeID, 0, rev.NodeCount())
	for id := range rev.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		gi := m.isGroup != nil && m.isGroup(rev.Nodes[ids[i]].Type)
		gj := m.isGroup != nil && m.isGroup(rev.Nodes[ids[j]].Type)
		if gi != gj {
			return gi
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (m *Maintainer) connectionIndexes(rev *graph.Revision) (map[graph.PortKey]struct{}, map[graph.NodeID]map[graph.PortID]struct{}) {
	flat := make(map[graph.PortKey]struct{}, 2*rev.ConnectionCount())
	byNode := make(map[graph.NodeID]map[graph.PortID]struct{})
	add := func(node graph.NodeID, port graph.PortID) {
		flat[graph.MakePortKey(node, port)] = struct{}{}
		set := byNode[node]
		if set == nil {
			set = make(map[graph.PortID]struct{})
			byNode[node] = set
		}
		set[port] = struct{}{}
	}
	for _, c := range rev.Connections {
		add(c.FromNode, c.FromPort)
		add(c.ToNode, c.ToPort)
	}
	return flat, byNode
}

// stabilizeByNode diffs the freshly computed per-node sets against the
// previous generation, reusing the old set object wherever the contents
// match. When every entry is reused and no entry was added or dropped,
// the whole previous map is kept.
func (m *Maintainer) stabilizeByNode(next map[graph.NodeID]map[graph.PortID]struct{}) (map[graph.NodeID]map[graph.PortID]struct{}, bool) {
	allReused := len(next) == len(m.byNode)
	for id, set := range next {
		old, ok := m.byNode[id]
		if !ok {
			allReused = false
			continue
		}
		if equalPortSets(old, set) {
			next[id] = old
		} else {
			allReused = false
		}
	}
	if allReused {
		return m.byNode, false
	}
	return next, true
}

func equalIDs(a, b []graph.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalKeySets(a, b map[graph.PortKey]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func equalPortSets(a, b map[graph.PortID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
