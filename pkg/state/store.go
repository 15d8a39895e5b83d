// Package state provides the keyed value store behind a weave component.
//
// A Store maps property names to opaque values. Listeners subscribe per key,
// or to every update through the Wildcard key:
//
//	s := state.New(map[string]any{"title": "Hello"})
//	s.On("title", func(newValue, oldValue any) error {
//	    fmt.Println(oldValue, "->", newValue)
//	    return nil
//	})
//	s.Update(map[string]any{"title": "World"})
//
// Change detection is shallow: every key present in a diff notifies its
// listeners, whether or not the value differs, and mutations inside a
// stored value are never observed.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Wildcard is the reserved key whose listeners observe every Update call.
// They receive the full post-update and pre-update maps as
// map[string]any values.
const Wildcard = "*"

// Listener is notified with a key's new and previous value.
type Listener func(newValue, oldValue any) error

// Subscription identifies one registered listener.
type Subscription struct {
	key string
	id  uint64
}

// Key returns the key the listener was registered under.
func (s Subscription) Key() string { return s.key }

type entry struct {
	id uint64
	fn Listener
}

// Store is a keyed value store with per-key and wildcard listeners.
// It is not safe for concurrent use; a component's store lives on the
// goroutine that owns the component.
type Store struct {
	values    map[string]any
	listeners map[string][]entry
	nextID    uint64
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for listener failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store holding a copy of initial.
func New(initial map[string]any, opts ...Option) *Store {
	s := &Store{
		values:    maps.Clone(initial),
		listeners: make(map[string][]entry),
		logger:    slog.Default().With("component", "state"),
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// On registers l under key. Several listeners may share a key; they run in
// registration order. Use Wildcard to observe every Update.
func (s *Store) On(key string, l Listener) Subscription {
	s.nextID++
	s.listeners[key] = append(s.listeners[key], entry{id: s.nextID, fn: l})
	return Subscription{key: key, id: s.nextID}
}

// Off removes a listener and reports whether it was registered.
func (s *Store) Off(sub Subscription) bool {
	list := s.listeners[sub.key]
	for i, e := range list {
		if e.id == sub.id {
			s.listeners[sub.key] = slices.Delete(slices.Clone(list), i, i+1)
			if len(s.listeners[sub.key]) == 0 {
				delete(s.listeners, sub.key)
			}
			return true
		}
	}
	return false
}

// Get returns the stored value for key.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and notifies that key's listeners. Wildcard
// listeners are not notified.
func (s *Store) Set(key string, value any) error {
	old := s.values[key]
	s.values[key] = value
	return s.notify(key, value, old)
}

// Update commits every key of diff, then notifies the listeners of each key
// (keys in sorted order, listeners in registration order), then notifies
// every wildcard listener exactly once, even when diff is empty.
//
// Listeners are isolated from each other: a failing listener does not stop
// the rest. All failures are returned joined.
func (s *Store) Update(diff map[string]any) error {
	before := maps.Clone(s.values)

	keys := slices.Sorted(maps.Keys(diff))
	for _, k := range keys {
		s.values[k] = diff[k]
	}

	var errs []error
	for _, k := range keys {
		if err := s.notify(k, diff[k], before[k]); err != nil {
			errs = append(errs, err)
		}
	}

	for _, e := range slices.Clone(s.listeners[Wildcard]) {
		after := maps.Clone(s.values)
		prev := maps.Clone(before)
		if err := s.call(Wildcard, e, after, prev); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Snapshot returns a shallow copy of every stored value.
func (s *Store) Snapshot() map[string]any {
	return maps.Clone(s.values)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of listeners registered under key.
func (s *Store) Len(key string) int {
	return len(s.listeners[key])
}

func (s *Store) notify(key string, newValue, oldValue any) error {
	var errs []error
	// Listeners added or removed during notification take effect next time.
	for _, e := range slices.Clone(s.listeners[key]) {
		if err := s.call(key, e, newValue, oldValue); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) call(key string, e entry, newValue, oldValue any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("weave: listener for %q panicked: %v", key, r)
		}
		if err != nil {
			s.logger.Warn("state listener failed", "key", key, "error", err)
		}
	}()

	if err := e.fn(newValue, oldValue); err != nil {
		return fmt.Errorf("state %q: %w", key, err)
	}
	return nil
}
