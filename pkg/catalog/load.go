package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/chazu/patchboard/pkg/graph"
)

// HCL catalog document shape:
//
//	node_type "timer" {
//	  label = "Timer"
//	  defaults = { interval = 1000 }
//	  input "trigger" {
//	    data_type = "signal"
//	  }
//	  output "elapsed" {
//	    data_type = "number"
//	    label     = "Elapsed"
//	  }
//	}
//
//	node_type "frame" {
//	  group = true
//	}

type hclDocument struct {
	Types []hclNodeType `hcl:"node_type,block"`
}

type hclNodeType struct {
	Tag      string         `hcl:"tag,label"`
	Label    *string        `hcl:"label,optional"`
	Group    *bool          `hcl:"group,optional"`
	Defaults hcl.Expression `hcl:"defaults,optional"`
	Inputs   []hclPort      `hcl:"input,block"`
	Outputs  []hclPort      `hcl:"output,block"`
}

type hclPort struct {
	ID       string  `hcl:"id,label"`
	DataType *string `hcl:"data_type,optional"`
	Label    *string `hcl:"label,optional"`
	MaxConns *int    `hcl:"max_conns,optional"`
}

// LoadHCLFile parses a catalog document from disk and registers its types
// into a new Catalog.
func LoadHCLFile(path string) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, diags)
	}
	return decodeCatalog(file)
}

// ParseHCL parses a catalog document held in memory.
func ParseHCL(src []byte, filename string) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("catalog: parsing %s: %w", filename, diags)
	}
	return decodeCatalog(file)
}

func decodeCatalog(file *hcl.File) (*Catalog, error) {
	var doc hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("catalog: decoding document: %w", diags)
	}

	cat := New()
	for _, ht := range doc.Types {
		def, err := buildTypeDef(ht)
		if err != nil {
			return nil, err
		}
		if err := cat.Register(def); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func buildTypeDef(ht hclNodeType) (*TypeDef, error) {
	def := &TypeDef{Tag: ht.Tag}
	if ht.Label != nil {
		def.Label = *ht.Label
	}
	if ht.Group != nil {
		def.Group = *ht.Group
	}

	if ht.Defaults != nil {
		val, diags := ht.Defaults.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("catalog: type %q defaults: %w", ht.Tag, diags)
		}
		if !val.IsNull() {
			data, err := ctyToData(val)
			if err != nil {
				return nil, fmt.Errorf("catalog: type %q defaults: %w", ht.Tag, err)
			}
			def.Defaults = data
		}
	}

	for _, hp := range ht.Inputs {
		def.Ports = append(def.Ports, buildPortDef(hp, graph.PortIn))
	}
	for _, hp := range ht.Outputs {
		def.Ports = append(def.Ports, buildPortDef(hp, graph.PortOut))
	}
	return def, nil
}

func buildPortDef(hp hclPort, role graph.PortRole) PortDef {
	pd := PortDef{ID: graph.PortID(hp.ID), Role: role}
	if hp.DataType != nil {
		pd.DataType = *hp.DataType
	}
	if hp.Label != nil {
		pd.Label = *hp.Label
	}
	if hp.MaxConns != nil {
		pd.MaxConns = *hp.MaxConns
	}
	return pd
}

// ctyToData converts a cty object value to a NodeData map.
func ctyToData(val cty.Value) (graph.NodeData, error) {
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("defaults must be an object, got %s", val.Type().FriendlyName())
	}
	data := make(graph.NodeData)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		goVal, err := ctyToGo(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k.AsString(), err)
		}
		data[k.AsString()] = goVal
	}
	return data, nil
}

// ctyToGo converts a single cty value to its plain Go representation.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			goVal, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, goVal)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			goVal, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = goVal
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
