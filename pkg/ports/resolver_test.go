package ports

import (
	"errors"
	"testing"

	"github.com/chazu/patchboard/pkg/catalog"
	"github.com/chazu/patchboard/pkg/graph"
)

func timerDef() *catalog.TypeDef {
	return &catalog.TypeDef{
		Tag: "timer",
		Ports: []catalog.PortDef{
			{ID: "trigger", Role: graph.PortIn, DataType: "signal"},
			{ID: "elapsed", Role: graph.PortOut, DataType: "number", Label: "Elapsed"},
		},
	}
}

func timerNode() *graph.Node {
	return &graph.Node{ID: "n1", Type: "timer", Data: graph.NodeData{"interval": 500.0}}
}

func TestResolveDerivesPorts(t *testing.T) {
	r := NewResolver()
	got, err := r.Resolve(timerNode(), timerDef())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("port count = %d, want 2", len(got))
	}
	if got[0].ID != "trigger" || got[0].Role != graph.PortIn {
		t.Errorf("first port = %+v", got[0])
	}
	if got[1].NodeID != "n1" {
		t.Errorf("port NodeID = %q, want n1", got[1].NodeID)
	}
	if got[1].Key() != graph.MakePortKey("n1", "elapsed") {
		t.Errorf("port key = %q", got[1].Key())
	}
}

func TestResolveNoDefinition(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve(timerNode(), nil)
	if !errors.Is(err, ErrNoDefinition) {
		t.Fatalf("err = %v, want ErrNoDefinition", err)
	}
}

func TestResolveCacheHitOnIdenticalTriple(t *testing.T) {
	r := NewResolver()
	n := timerNode()
	def := timerDef()

	first, err := r.Resolve(n, def)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(n, def)
	if err != nil {
		t.Fatal(err)
	}
	if &first[0] != &second[0] {
		t.Error("identical triple should return the cached slice")
	}
}

func TestResolveMissOnNewDataMap(t *testing.T) {
	r := NewResolver()
	n := timerNode()
	def := timerDef()

	first, _ := r.Resolve(n, def)

	// Equal contents, fresh map: identity changed, must re-derive.
	n2 := n.Clone()
	n2.Data = n.Data.Clone()
	second, _ := r.Resolve(n2, def)
	if &first[0] == &second[0] {
		t.Error("fresh data map must force re-derivation")
	}
}

func TestResolveMissOnReloadedDefinition(t *testing.T) {
	r := NewResolver()
	n := timerNode()

	first, _ := r.Resolve(n, timerDef())
	// Same tag and data, different definition object (hot reload).
	second, _ := r.Resolve(n, timerDef())
	if &first[0] == &second[0] {
		t.Error("reloaded definition must force re-derivation")
	}
}

func TestResolveMissOnTypeChange(t *testing.T) {
	r := NewResolver()
	n := timerNode()
	def := timerDef()
	first, _ := r.Resolve(n, def)

	retyped := n.Clone()
	retyped.Type = "other"
	otherDef := &catalog.TypeDef{Tag: "other"}
	second, err := r.Resolve(retyped, otherDef)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Errorf("other type has no ports, got %v", second)
	}
	_ = first
}

func TestClearNodeCache(t *testing.T) {
	r := NewResolver()
	n := timerNode()
	def := timerDef()

	first, _ := r.Resolve(n, def)
	r.ClearNodeCache(n.ID)
	second, _ := r.Resolve(n, def)
	if &first[0] == &second[0] {
		t.Error("ClearNodeCache must drop the entry")
	}

	// Scoped clear leaves other nodes cached.
	m := timerNode()
	m.ID = "n2"
	mFirst, _ := r.Resolve(m, def)
	r.ClearNodeCache(n.ID)
	mSecond, _ := r.Resolve(m, def)
	if &mFirst[0] != &mSecond[0] {
		t.Error("ClearNodeCache(n1) must not evict n2")
	}
}

func TestClearCache(t *testing.T) {
	r := NewResolver()
	n := timerNode()
	def := timerDef()
	first, _ := r.Resolve(n, def)
	r.ClearCache()
	second, _ := r.Resolve(n, def)
	if &first[0] == &second[0] {
		t.Error("ClearCache must drop all entries")
	}
}

func TestDynamicPortsAndOverrides(t *testing.T) {
	def := &catalog.TypeDef{
		Tag:   "merge",
		Ports: []catalog.PortDef{{ID: "out", Role: graph.PortOut}},
		DynamicPorts: func(data graph.NodeData) []catalog.PortDef {
			n := int(data["inputs"].(float64))
			var out []catalog.PortDef
			for i := 0; i < n; i++ {
				out = append(out, catalog.PortDef{ID: graph.PortID(string(rune('a' + i))), Role: graph.PortIn})
			}
			return out
		},
	}
	n := &graph.Node{
		ID:   "m",
		Type: "merge",
		Data: graph.NodeData{
			"inputs":      2.0,
			"port_labels": map[string]any{"out": "Result"},
		},
	}

	r := NewResolver()
	got, err := r.Resolve(n, def)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("port count = %d, want 3", len(got))
	}
	if got[0].Label != "Result" {
		t.Errorf("override label = %q, want Result", got[0].Label)
	}
	if !Contains(got, "a") || !Contains(got, "b") {
		t.Errorf("dynamic ports missing: %v", got)
	}
	if Contains(got, "z") {
		t.Error("Contains reported a port that does not exist")
	}
}
