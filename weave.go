// Package weave provides the public API for the weave component runtime.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/weave"
//
// Usage:
//
//	rt := weave.New(weave.Config{})
//	rt.CompileTemplate("card", `<div><h2 data-text="title"></h2><!--slot:items--></div>`)
//	card, err := rt.NewComponent(weave.Definition{Name: "card"}, map[string]any{"title": "Hello"})
//	card.Mount(body)
//	card.Update(map[string]any{"title": "World"})
package weave

import (
	"log/slog"

	"github.com/vango-dev/weave/pkg/component"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/frame"
	"github.com/vango-dev/weave/pkg/metrics"
	"github.com/vango-dev/weave/pkg/template"
)

// =============================================================================
// Re-exports
// =============================================================================

// Node is a node of the rendering surface.
type Node = dom.Node

// Component is a view subtree driven by a state store.
type Component = component.Component

// Definition names the template a component is built from.
type Definition = component.Definition

// Drop is a fillable markup fragment without component machinery.
type Drop = template.Drop

// Lifecycle events emitted on every component.
const (
	EventMounted   = component.EventMounted
	EventUnmounted = component.EventUnmounted
)

// =============================================================================
// Runtime
// =============================================================================

// Runtime is the application-scoped owner of the template registry, the
// frame scheduler, the logger and the metrics recorder. Every component it
// creates shares them.
type Runtime struct {
	registry  *template.Registry
	scheduler frame.Scheduler
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// New creates a runtime. Zero-valued fields of cfg get defaults.
func New(cfg Config) *Runtime {
	cfg = cfg.withDefaults()
	return &Runtime{
		registry:  cfg.Registry,
		scheduler: cfg.Scheduler,
		logger:    cfg.Logger,
		recorder:  cfg.Recorder,
	}
}

// Registry returns the template registry.
func (rt *Runtime) Registry() *template.Registry { return rt.registry }

// Scheduler returns the frame scheduler.
func (rt *Runtime) Scheduler() frame.Scheduler { return rt.scheduler }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Recorder returns the metrics recorder.
func (rt *Runtime) Recorder() metrics.Recorder { return rt.recorder }

// CompileTemplate compiles and registers a template.
func (rt *Runtime) CompileTemplate(name, markup string) (*Node, error) {
	return rt.registry.CompileTemplate(name, markup)
}

// GetTemplate returns a fresh clone of a registered template, or nil.
func (rt *Runtime) GetTemplate(name string) *Node {
	return rt.registry.GetTemplate(name)
}

// RegisterDrop compiles and registers a drop.
func (rt *Runtime) RegisterDrop(name, markup string) error {
	return rt.registry.RegisterDrop(name, markup)
}

// CreateDrop instantiates and fills a registered drop. It returns nil when
// the drop is not registered.
func (rt *Runtime) CreateDrop(name string, values map[string]any) (*Drop, error) {
	return rt.registry.CreateDrop(name, values)
}

// NewComponent constructs a component wired to the runtime's registry,
// scheduler, logger and recorder.
func (rt *Runtime) NewComponent(def Definition, props map[string]any) (*Component, error) {
	return component.New(rt.registry, def, props,
		component.WithScheduler(rt.scheduler),
		component.WithLogger(rt.logger.With("component", "component")),
		component.WithRecorder(rt.recorder),
	)
}
