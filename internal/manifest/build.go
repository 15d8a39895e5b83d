package manifest

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/component"
	"github.com/vango-dev/weave/pkg/template"
)

// Root is a built top-level component.
type Root struct {
	ID        string
	Component *component.Component
}

// Register compiles every template and drop into reg, in name order.
func (m *Manifest) Register(reg *template.Registry) error {
	for _, name := range slices.Sorted(maps.Keys(m.Templates)) {
		if _, err := reg.CompileTemplate(name, m.Templates[name]); err != nil {
			return errors.New("E303").
				WithDetail(fmt.Sprintf("Template %q: %v", name, err)).
				Wrap(err)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(m.Drops)) {
		if err := reg.RegisterDrop(name, m.Drops[name]); err != nil {
			return errors.New("E303").
				WithDetail(fmt.Sprintf("Drop %q: %v", name, err)).
				Wrap(err)
		}
	}
	return nil
}

// Build registers the manifest's templates and drops with rt and constructs
// every mount entry with its slot children. Nothing is mounted; the caller
// mounts the roots into a document.
func (m *Manifest) Build(rt *weave.Runtime) ([]Root, error) {
	if err := m.Register(rt.Registry()); err != nil {
		return nil, err
	}

	roots := make([]Root, 0, len(m.Mount))
	for i := range m.Mount {
		spec := &m.Mount[i]
		c, err := m.build(rt, spec)
		if err != nil {
			return nil, err
		}
		roots = append(roots, Root{ID: spec.ID, Component: c})
	}
	return roots, nil
}

func (m *Manifest) build(rt *weave.Runtime, spec *ComponentSpec) (*component.Component, error) {
	c, err := rt.NewComponent(component.Definition{Name: spec.Component}, spec.Props)
	if err != nil {
		return nil, m.errorAt("E202", spec).
			WithDetail(fmt.Sprintf("Cannot construct %q: %v", spec.Component, err)).
			Wrap(err)
	}

	for _, name := range spec.SlotNames() {
		s := c.Slot(name)
		if s == nil {
			return nil, m.errorAt("E304", spec).
				WithDetail(fmt.Sprintf("Template %q has no slot %q", spec.Component, name))
		}
		children := spec.Slots[name]
		for i := range children {
			child, err := m.build(rt, &children[i])
			if err != nil {
				return nil, err
			}
			s.Push(child)
		}
	}
	return c, nil
}
