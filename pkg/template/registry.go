package template

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"github.com/vango-dev/weave/pkg/dom"
)

// Registry maps names to compiled template and drop prototypes.
//
// A Registry is created once at application start and handed to whatever
// constructs components. It is safe for concurrent use; the prototypes it
// holds are never mutated, only cloned.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Prototype
	drops     map[string]*Prototype
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		templates: make(map[string]*Prototype),
		drops:     make(map[string]*Prototype),
		logger:    slog.Default().With("component", "template"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CompileTemplate compiles markup, registers it under name and returns an
// independent clone of the result. Registering a name twice logs a warning
// and replaces the previous prototype.
func (r *Registry) CompileTemplate(name, markup string) (*dom.Node, error) {
	p, err := Compile(name, markup)
	if err != nil {
		return nil, err
	}
	r.store(r.templates, "template", p)
	return p.Clone(), nil
}

// GetTemplate returns a fresh clone of the named template, or nil if the
// name is not registered.
func (r *Registry) GetTemplate(name string) *dom.Node {
	p := r.Template(name)
	if p == nil {
		return nil
	}
	return p.Clone()
}

// Template returns the named template prototype, or nil.
func (r *Registry) Template(name string) *Prototype {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates[name]
}

// Instantiate clones the named template and resolves its markers. It
// returns nil if the name is not registered.
func (r *Registry) Instantiate(name string) *Instance {
	p := r.Template(name)
	if p == nil {
		return nil
	}
	return p.Instantiate()
}

// Templates returns the registered template names in sorted order.
func (r *Registry) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.templates))
}

// RegisterDrop compiles markup and registers it as a drop.
func (r *Registry) RegisterDrop(name, markup string) error {
	p, err := Compile(name, markup)
	if err != nil {
		return err
	}
	r.store(r.drops, "drop", p)
	return nil
}

// CreateDrop instantiates the named drop and fills it with values. It
// returns a nil Drop when the name is not registered. Values of the wrong
// shape for their binding are reported after every value was attempted;
// the Drop is still returned.
func (r *Registry) CreateDrop(name string, values map[string]any) (*Drop, error) {
	r.mu.RLock()
	p := r.drops[name]
	r.mu.RUnlock()
	if p == nil {
		return nil, nil
	}

	d := newDrop(name, p.Instantiate())
	return d, d.Fill(values)
}

// Drops returns the registered drop names in sorted order.
func (r *Registry) Drops() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.drops))
}

// CompileComponent renders a templ component and compiles the output as the
// named template.
func (r *Registry) CompileComponent(ctx context.Context, name string, c templ.Component) (*dom.Node, error) {
	markup, err := renderTempl(ctx, c)
	if err != nil {
		return nil, err
	}
	return r.CompileTemplate(name, markup)
}

// RegisterDropComponent renders a templ component and registers the output
// as the named drop.
func (r *Registry) RegisterDropComponent(ctx context.Context, name string, c templ.Component) error {
	markup, err := renderTempl(ctx, c)
	if err != nil {
		return err
	}
	return r.RegisterDrop(name, markup)
}

func renderTempl(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Registry) store(into map[string]*Prototype, kind string, p *Prototype) {
	r.mu.Lock()
	_, exists := into[p.name]
	into[p.name] = p
	r.mu.Unlock()

	if exists {
		r.logger.Warn("duplicate registration, replacing previous "+kind, "name", p.name)
	}
	for _, slot := range p.ShadowedSlots() {
		r.logger.Warn("slot anchored inside a text or markup binding", kind, p.name, "slot", slot)
	}
}
