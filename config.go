package weave

import (
	"log/slog"

	"github.com/vango-dev/weave/pkg/frame"
	"github.com/vango-dev/weave/pkg/metrics"
	"github.com/vango-dev/weave/pkg/template"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config configures a Runtime.
type Config struct {
	// Registry holds compiled templates and drops.
	// If nil, a new empty registry is created.
	Registry *template.Registry

	// Scheduler drives the two-frame mount barrier.
	// Default: frame.Immediate, which completes the barrier synchronously.
	// Use frame.NewManual in tests and frame.NewLoop for a live surface.
	Scheduler frame.Scheduler

	// Logger is the structured logger for the runtime.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Recorder receives lifecycle and state metrics.
	// Default: metrics.Nop.
	Recorder metrics.Recorder
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Registry == nil {
		c.Registry = template.NewRegistry(template.WithLogger(c.Logger.With("component", "template")))
	}
	if c.Scheduler == nil {
		c.Scheduler = &frame.Immediate{}
	}
	if c.Recorder == nil {
		c.Recorder = metrics.Nop{}
	}
	return c
}
