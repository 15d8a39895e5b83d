package component

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vango-dev/weave/pkg/binding"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/frame"
	"github.com/vango-dev/weave/pkg/metrics"
	"github.com/vango-dev/weave/pkg/slot"
	"github.com/vango-dev/weave/pkg/state"
	"github.com/vango-dev/weave/pkg/template"
)

var (
	// ErrUnknownTemplate is returned by New when the template is neither
	// registered nor supplied as markup.
	ErrUnknownTemplate = errors.New("weave: unknown template")

	// ErrNotConstructed is returned by Mount on a component that was
	// already mounted or unmounted.
	ErrNotConstructed = errors.New("weave: component is not in the constructed state")

	// ErrNoParent is returned by Mount when parent is nil.
	ErrNoParent = errors.New("weave: mount requires a parent node")
)

// Status is a component lifecycle state.
type Status uint8

const (
	StatusConstructed Status = iota
	StatusMounted
	StatusUnmounted
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusConstructed:
		return "constructed"
	case StatusMounted:
		return "mounted"
	case StatusUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Definition names the template a component is built from.
type Definition struct {
	// Name is the registry key of the template.
	Name string

	// Template is markup compiled and registered under Name the first time
	// the name is not found in the registry. Optional once the template is
	// registered.
	Template string
}

// Option configures a Component.
type Option func(*options)

type options struct {
	scheduler frame.Scheduler
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// WithScheduler sets the frame scheduler used by the mount barrier.
// Defaults to frame.Immediate, which collapses the barrier into a single
// synchronous step.
func WithScheduler(s frame.Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithLogger sets the component logger. The logger is also handed to the
// component's store and slots.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// Component is a view subtree driven by a state store.
type Component struct {
	name     string
	view     *dom.Node
	refs     map[string]*dom.Node
	bindings []template.Bound
	slots    []*slot.Slot
	store    *state.Store
	status   Status

	scheduler frame.Scheduler
	mounting  bool
	barrier   frame.Handle
	ready     bool

	handlers      map[string][]handlerEntry
	nextHandlerID uint64

	logger   *slog.Logger
	recorder metrics.Recorder
}

// New constructs a component from the registry template def.Name, compiling
// def.Template into the registry first if the name is not registered yet.
// props are applied through a single Update after the store is seeded and
// before the view is attached. If that Update fails, New returns the error
// and no component.
func New(reg *template.Registry, def Definition, props map[string]any, opts ...Option) (*Component, error) {
	o := options{
		scheduler: &frame.Immediate{},
		logger:    slog.Default().With("component", "component"),
		recorder:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	inst := reg.Instantiate(def.Name)
	if inst == nil {
		if def.Template == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, def.Name)
		}
		if _, err := reg.CompileTemplate(def.Name, def.Template); err != nil {
			return nil, fmt.Errorf("compile template %q: %w", def.Name, err)
		}
		inst = reg.Instantiate(def.Name)
	}

	logger := o.logger.With("name", def.Name)
	c := &Component{
		name:      def.Name,
		view:      inst.Root,
		refs:      inst.Refs,
		bindings:  inst.Bindings,
		scheduler: o.scheduler,
		logger:    logger,
		recorder:  o.recorder,
	}

	for _, a := range inst.Slots {
		c.slots = append(c.slots, slot.New(a.Name, a.Node,
			slot.WithLogger(logger),
			slot.WithObserver(o.recorder),
		))
	}

	// When several bindings share a name the first one seeds the store;
	// all of them follow updates.
	initial := make(map[string]any, len(c.bindings))
	for _, bd := range c.bindings {
		if _, ok := initial[bd.Name]; !ok {
			initial[bd.Name] = bd.Binding.Current()
		}
	}
	c.store = state.New(initial, state.WithLogger(logger))
	for _, bd := range c.bindings {
		c.store.On(bd.Name, bd.Binding.Update)
	}

	if len(props) > 0 {
		if err := c.Update(props); err != nil {
			return nil, err
		}
	}

	c.recorder.ComponentConstructed(c.name)
	logger.Debug("component constructed", "bindings", len(c.bindings), "slots", len(c.slots))
	return c, nil
}

// Name returns the template name the component was built from.
func (c *Component) Name() string { return c.name }

// View returns the component's root view node.
func (c *Component) View() *dom.Node { return c.view }

// Status returns the lifecycle state.
func (c *Component) Status() Status { return c.status }

// Ready reports whether the mount barrier has completed.
func (c *Component) Ready() bool { return c.ready }

// State returns the component's store.
func (c *Component) State() *state.Store { return c.store }

// Ref returns the node marked data-ref="name", or nil.
func (c *Component) Ref(name string) *dom.Node { return c.refs[name] }

// Binding returns the first binding named name, or nil.
func (c *Component) Binding(name string) binding.Binding {
	for _, bd := range c.bindings {
		if bd.Name == name {
			return bd.Binding
		}
	}
	return nil
}

// Slot returns the first slot named name, or nil.
func (c *Component) Slot(name string) *slot.Slot {
	for _, s := range c.slots {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Slots returns the component's slots in document order.
func (c *Component) Slots() []*slot.Slot {
	out := make([]*slot.Slot, len(c.slots))
	copy(out, c.slots)
	return out
}

// Update commits diff to the store and pushes each value to the bindings of
// the same name. Invalid binding values are returned as errors wrapping
// binding.ErrInvalidValue; the other bindings are still updated.
func (c *Component) Update(diff map[string]any) error {
	err := c.store.Update(diff)
	c.recorder.StateUpdated(c.name, len(diff))
	if err != nil {
		c.recorder.ListenerFailed(c.name)
	}
	return err
}

// Mount appends the view to parent as its last child and starts the mounted
// sequence. The in-memory tree commits the attach synchronously.
func (c *Component) Mount(parent *dom.Node) error {
	if parent == nil {
		return ErrNoParent
	}
	if c.status != StatusConstructed || c.mounting {
		return fmt.Errorf("%w: %s", ErrNotConstructed, c.status)
	}
	dom.AppendChild(parent, c.view)
	c.Mounted()
	return nil
}

// Mounted waits two frames, then mounts every slot in order and emits
// EventMounted. It is called by Mount, and by a slot for components placed
// in it. Calls while the barrier is pending, after it completed, or after
// Unmount are ignored.
func (c *Component) Mounted() {
	if c.status == StatusUnmounted || c.mounting || c.ready {
		return
	}
	c.status = StatusMounted
	c.mounting = true
	c.logger.Debug("mount barrier started")

	c.requestFrame(func() {
		c.requestFrame(c.finishMount)
	})
}

// requestFrame schedules fn and retains its handle while it is pending.
// A scheduler may run fn before RequestFrame returns; that handle is
// already spent and is not retained.
func (c *Component) requestFrame(fn func()) {
	ran := false
	h := c.scheduler.RequestFrame(func() {
		ran = true
		fn()
	})
	if !ran {
		c.barrier = h
	}
}

func (c *Component) finishMount() {
	if !c.mounting {
		return
	}
	c.mounting = false
	c.barrier = 0
	c.ready = true

	for _, s := range c.slots {
		s.Mount()
	}
	c.recorder.ComponentMounted(c.name)
	c.logger.Debug("component mounted")
	c.Emit(EventMounted, c)
}

// Unmount tears down every slot (and so every descendant) first, cancels a
// pending mount barrier, then detaches the view. Unmount is terminal;
// calling it again is a no-op.
func (c *Component) Unmount() {
	if c.status == StatusUnmounted {
		return
	}

	for _, s := range c.slots {
		s.Unmount()
	}

	if c.mounting {
		c.scheduler.CancelFrame(c.barrier)
		c.mounting = false
		c.barrier = 0
	}

	wasReady := c.ready
	c.status = StatusUnmounted
	c.ready = false
	dom.Detach(c.view)

	if wasReady {
		c.recorder.ComponentUnmounted(c.name)
	}
	c.logger.Debug("component unmounted")
	c.Emit(EventUnmounted, c)
}
