package catalog

import (
	"fmt"

	"github.com/chazu/patchboard/pkg/graph"
)

// Default returns the built-in catalog the application ships with. It is
// a fresh value on every call so hot-reload semantics stay testable
// (each call yields distinct TypeDef identities).
func Default() *Catalog {
	c := New()
	for _, def := range []*TypeDef{
		{
			Tag:   "process",
			Label: "Process",
			Ports: []PortDef{
				{ID: "in", Role: graph.PortIn, DataType: "any", Label: "In"},
				{ID: "out", Role: graph.PortOut, DataType: "any", Label: "Out"},
			},
		},
		{
			Tag:      "timer",
			Label:    "Timer",
			Defaults: graph.NodeData{"interval": 1000.0},
			Ports: []PortDef{
				{ID: "trigger", Role: graph.PortIn, DataType: "signal", Label: "Trigger"},
				{ID: "elapsed", Role: graph.PortOut, DataType: "number", Label: "Elapsed"},
			},
		},
		{
			Tag:      "merge",
			Label:    "Merge",
			Defaults: graph.NodeData{"inputs": 2.0},
			Ports: []PortDef{
				{ID: "out", Role: graph.PortOut, DataType: "any", Label: "Out"},
			},
			DynamicPorts: mergeInputs,
		},
		{
			Tag:   "note",
			Label: "Note",
		},
		{
			Tag:   "frame",
			Label: "Frame",
			Group: true,
		},
	} {
		// Tags are unique by construction here.
		_ = c.Register(def)
	}
	return c
}

// mergeInputs derives the variable input ports of a merge node from its
// configured input count.
func mergeInputs(data graph.NodeData) []PortDef {
	count := 2
	if v, ok := data["inputs"].(float64); ok && v >= 1 {
		count = int(v)
	}
	ports := make([]PortDef, 0, count)
	for i := 0; i < count; i++ {
		ports = append(ports, PortDef{
			ID:       graph.PortID(fmt.Sprintf("in-%d", i)),
			Role:     graph.PortIn,
			DataType: "any",
		})
	}
	return ports
}
