package template

import (
	"errors"

	"github.com/vango-dev/weave/pkg/dom"
)

// Drop is an instantiated drop: a fragment with refs and fillable bindings
// but no state store or lifecycle.
type Drop struct {
	Name string
	Root *dom.Node

	refs     map[string]*dom.Node
	bindings []Bound
}

func newDrop(name string, inst *Instance) *Drop {
	return &Drop{
		Name:     name,
		Root:     inst.Root,
		refs:     inst.Refs,
		bindings: inst.Bindings,
	}
}

// Ref returns the node marked with data-ref="name", or nil.
func (d *Drop) Ref(name string) *dom.Node {
	return d.refs[name]
}

// Fill pushes values into every binding whose key is present. Each binding
// is attempted; failures are returned joined.
func (d *Drop) Fill(values map[string]any) error {
	var errs []error
	for _, b := range d.bindings {
		v, ok := values[b.Name]
		if !ok {
			continue
		}
		if err := b.Binding.Update(v, b.Binding.Current()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Values returns the current value of every binding, keyed by name. When
// several bindings share a key the first one wins.
func (d *Drop) Values() map[string]any {
	out := make(map[string]any, len(d.bindings))
	for _, b := range d.bindings {
		if _, ok := out[b.Name]; !ok {
			out[b.Name] = b.Binding.Current()
		}
	}
	return out
}
