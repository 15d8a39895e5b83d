package frame

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRate is the frame interval used when Config.Rate is zero (60 FPS).
const DefaultRate = 16667 * time.Microsecond

// Config configures a Loop.
type Config struct {
	// Rate is the frame interval. Default: DefaultRate.
	Rate time.Duration

	// Logger receives panic reports from tasks and callbacks.
	// Default: slog.Default().
	Logger *slog.Logger
}

// Loop owns the goroutine that views are mutated on. Work posted from other
// goroutines runs on the loop between frames; frame callbacks run once per
// tick. Post, Do, RequestFrame and CancelFrame are safe for concurrent use.
type Loop struct {
	rate   time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	tasks   []func()
	frames  []request
	running map[Handle]bool
	next    Handle
	after   []func()
	dirty   bool

	wake   chan struct{}
	count  atomic.Uint64
	active atomic.Bool
}

// NewLoop creates a frame loop. Call Run to start it.
func NewLoop(cfg Config) *Loop {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		rate:   cfg.Rate,
		logger: cfg.Logger.With("component", "frame"),
		wake:   make(chan struct{}, 1),
	}
}

// Run processes tasks and frames until ctx is done. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	if !l.active.CompareAndSwap(false, true) {
		return fmt.Errorf("weave: frame loop already running")
	}
	defer l.active.Store(false)

	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.runTasks()
		case <-ticker.C:
			l.tick()
		}
	}
}

// Frames returns the number of frames processed.
func (l *Loop) Frames() uint64 {
	return l.count.Load()
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	l.Post(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("weave: panic in loop task: %v", r)
			}
			done <- err
		}()
		err = fn()
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFrame registers fn to run on the loop goroutine at the end of every
// frame in which tasks or frame callbacks ran.
func (l *Loop) AfterFrame(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.after = append(l.after, fn)
}

// RequestFrame schedules fn for the next tick.
func (l *Loop) RequestFrame(fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.frames = append(l.frames, request{handle: l.next, fn: fn})
	return l.next
}

// CancelFrame cancels a pending callback.
func (l *Loop) CancelFrame(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running[h] {
		delete(l.running, h)
		return
	}
	for i, r := range l.frames {
		if r.handle == h {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	if len(tasks) > 0 {
		l.dirty = true
	}
	l.mu.Unlock()

	for _, fn := range tasks {
		l.safely("task", fn)
	}
}

func (l *Loop) tick() {
	l.runTasks()

	l.mu.Lock()
	batch := l.frames
	l.frames = nil
	l.running = make(map[Handle]bool, len(batch))
	for _, r := range batch {
		l.running[r.handle] = true
	}
	l.mu.Unlock()

	for _, r := range batch {
		l.mu.Lock()
		live := l.running[r.handle]
		delete(l.running, r.handle)
		l.mu.Unlock()
		if live {
			l.safely("frame callback", r.fn)
		}
	}

	l.mu.Lock()
	l.running = nil
	dirty := l.dirty || len(batch) > 0
	l.dirty = false
	after := l.after
	l.mu.Unlock()

	l.count.Add(1)
	if dirty {
		for _, fn := range after {
			l.safely("after-frame hook", fn)
		}
	}
}

func (l *Loop) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in "+what, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
