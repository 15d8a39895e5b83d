package manifest

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vango-dev/weave/internal/errors"
)

// hclFile is the top-level structure of an HCL manifest:
//
//	template "card" {
//	  markup = "<div class=\"card\"><h2 data-text=\"title\"></h2><!--slot:items--></div>"
//	}
//
//	mount "main" {
//	  component = "card"
//	  props     = { title = "Hello" }
//
//	  slot "items" {
//	    child {
//	      component = "item"
//	      props     = { label = "one" }
//	    }
//	  }
//	}
type hclFile struct {
	Templates []*hclMarkup `hcl:"template,block"`
	Drops     []*hclMarkup `hcl:"drop,block"`
	Mount     []*hclMount  `hcl:"mount,block"`
}

type hclMarkup struct {
	Name   string `hcl:"name,label"`
	Markup string `hcl:"markup"`
}

type hclMount struct {
	ID        string         `hcl:"id,label"`
	Component hcl.Expression `hcl:"component"`
	Props     hcl.Expression `hcl:"props,optional"`
	Slots     []*hclSlot     `hcl:"slot,block"`
}

type hclSlot struct {
	Name     string      `hcl:"name,label"`
	Children []*hclChild `hcl:"child,block"`
}

type hclChild struct {
	Component hcl.Expression `hcl:"component"`
	Props     hcl.Expression `hcl:"props,optional"`
	Slots     []*hclSlot     `hcl:"slot,block"`
}

// ParseHCL decodes an HCL manifest and checks it. path is used for error
// locations only.
func ParseHCL(data []byte, path string) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, diagError(diags)
	}

	m := &Manifest{
		Templates: make(map[string]string, len(f.Templates)),
		Drops:     make(map[string]string, len(f.Drops)),
		path:      path,
	}
	for _, t := range f.Templates {
		m.Templates[t.Name] = t.Markup
	}
	for _, d := range f.Drops {
		m.Drops[d.Name] = d.Markup
	}
	for _, mb := range f.Mount {
		spec, err := decodeComponent(mb.Component, mb.Props, mb.Slots)
		if err != nil {
			return nil, err
		}
		spec.ID = mb.ID
		m.Mount = append(m.Mount, spec)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeComponent(component, props hcl.Expression, slots []*hclSlot) (ComponentSpec, error) {
	var spec ComponentSpec

	rng := component.Range()
	spec.Line, spec.Column = rng.Start.Line, rng.Start.Column

	if diags := gohcl.DecodeExpression(component, nil, &spec.Component); diags.HasErrors() {
		return spec, diagError(diags)
	}

	if props != nil {
		v, diags := props.Value(nil)
		if diags.HasErrors() {
			return spec, diagError(diags)
		}
		if !v.IsNull() {
			if !v.Type().IsObjectType() && !v.Type().IsMapType() {
				return spec, errors.New("E302").
					WithLocation(props.Range().Filename, props.Range().Start.Line, props.Range().Start.Column).
					WithDetail("props must be an object")
			}
			decoded, err := ctyToGo(v)
			if err != nil {
				return spec, errors.New("E302").
					WithLocation(props.Range().Filename, props.Range().Start.Line, props.Range().Start.Column).
					WithDetail(err.Error())
			}
			spec.Props = decoded.(map[string]any)
		}
	}

	for _, s := range slots {
		if spec.Slots == nil {
			spec.Slots = make(map[string][]ComponentSpec)
		}
		for _, c := range s.Children {
			child, err := decodeComponent(c.Component, c.Props, c.Slots)
			if err != nil {
				return spec, err
			}
			spec.Slots[s.Name] = append(spec.Slots[s.Name], child)
		}
	}
	return spec, nil
}

// ctyToGo converts a literal value to the types a YAML manifest produces:
// string, int, float64, bool, []any and map[string]any.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("props must be literal values")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
	}
}

// diagError converts the first error diagnostic to an E302.
func diagError(diags hcl.Diagnostics) *errors.WeaveError {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		we := errors.New("E302").WithDetail(d.Summary + ": " + d.Detail).Wrap(diags)
		if d.Subject != nil {
			we.WithLocation(d.Subject.Filename, d.Subject.Start.Line, d.Subject.Start.Column)
		}
		return we
	}
	return errors.New("E302").Wrap(diags)
}
