package reducer

import (
	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/ports"
)

// PruneConnections removes every connection with an endpoint that no
// longer resolves: a missing node, a node whose type has no catalog
// entry, or a port absent from the node's resolved port list. A single
// pass converges because removing connections cannot invalidate node
// existence.
func PruneConnections(rev *graph.Revision, env Env) *graph.Revision {
	if rev.ConnectionCount() == 0 {
		return rev
	}

	resolved := make(map[graph.NodeID][]graph.Port)
	portsOf := func(id graph.NodeID) []graph.Port {
		if cached, ok := resolved[id]; ok {
			return cached
		}
		var out []graph.Port
		if n := rev.Node(id); n != nil && env.Catalog != nil && env.Ports != nil {
			// Resolution failure means the ports are not derivable, so
			// the endpoint counts as invalid; the hard error is
			// reserved for explicit port queries.
			if list, err := env.Ports.Resolve(n, env.Catalog.Lookup(n.Type)); err == nil {
				out = list
			}
		}
		resolved[id] = out
		return out
	}

	var dead []graph.ConnectionID
	for id, c := range rev.Connections {
		if rev.Node(c.FromNode) == nil || rev.Node(c.ToNode) == nil ||
			!ports.Contains(portsOf(c.FromNode), c.FromPort) ||
			!ports.Contains(portsOf(c.ToNode), c.ToPort) {
			dead = append(dead, id)
		}
	}
	if len(dead) == 0 {
		return rev
	}

	conns := make(map[graph.ConnectionID]*graph.Connection, rev.ConnectionCount()-len(dead))
	for id, c := range rev.Connections {
		conns[id] = c
	}
	for _, id := range dead {
		delete(conns, id)
	}
	return rev.ReplaceConnections(conns)
}
