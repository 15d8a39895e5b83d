// Package slot implements ordered, anchored insertion points for child
// components.
//
// A Slot is anchored at a comment node (<!--slot:name-->) inside its owner's
// view. Children are kept in a sequence, and their views are kept as
// siblings directly after the anchor in the same order. Every insertion is
// made relative to the anchor or to a neighbouring child's view, so the
// anchor itself never moves.
//
// While the slot is mounted, added children are mounted immediately and
// removed children are unmounted before their views are detached.
//
// A child whose view leaves the anchor's parent behind the slot's back, for
// instance because Unmount was called on it directly, is dropped from the
// sequence the next time the slot is used.
package slot

import (
	"log/slog"
	"slices"

	"github.com/vango-dev/weave/pkg/dom"
)

// Child is a component that can live in a slot.
type Child interface {
	// View returns the child's root view node.
	View() *dom.Node

	// Mounted starts the child's mounted lifecycle once its view is
	// attached.
	Mounted()

	// Unmount tears the child down and detaches its view.
	Unmount()
}

// Observer is notified of slot mutations. Used for metrics.
type Observer interface {
	SlotMutated(op string)
}

// Slot is an ordered sequence of children anchored in a parent view.
// It is not safe for concurrent use.
type Slot struct {
	name     string
	anchor   *dom.Node
	children []Child
	mounted  bool

	logger   *slog.Logger
	observer Observer
}

// Option configures a Slot.
type Option func(*Slot)

// WithLogger sets the slot logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Slot) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the mutation observer.
func WithObserver(o Observer) Option {
	return func(s *Slot) {
		s.observer = o
	}
}

// New creates an empty, unmounted slot anchored at anchor.
func New(name string, anchor *dom.Node, opts ...Option) *Slot {
	s := &Slot{
		name:   name,
		anchor: anchor,
		logger: slog.Default().With("component", "slot"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("slot", name)
	return s
}

// Name returns the slot name.
func (s *Slot) Name() string { return s.name }

// Anchor returns the anchor node.
func (s *Slot) Anchor() *dom.Node { return s.anchor }

// Len returns the number of children.
func (s *Slot) Len() int {
	s.prune()
	return len(s.children)
}

// IsMounted reports whether the slot is mounted.
func (s *Slot) IsMounted() bool { return s.mounted }

// Children returns a copy of the child sequence.
func (s *Slot) Children() []Child {
	s.prune()
	return slices.Clone(s.children)
}

// At returns the child at pos, or nil when pos is out of range.
func (s *Slot) At(pos int) Child {
	s.prune()
	if pos < 0 || pos >= len(s.children) {
		return nil
	}
	return s.children[pos]
}

// SetContent replaces the whole sequence. The old children are torn down
// first; the new ones are attached after the anchor in order and, if the
// slot is mounted, mounted in order. Nil and repeated children are skipped,
// as is everything when the anchor is detached. It returns the number of
// children placed.
func (s *Slot) SetContent(children ...Child) int {
	s.Clear()

	prev := s.anchor
	for _, c := range children {
		if c == nil || slices.Contains(s.children, c) {
			continue
		}
		if !dom.InsertAfter(prev, c.View()) {
			s.logger.Warn("slot anchor is detached, content dropped", "children", len(children))
			break
		}
		s.children = append(s.children, c)
		prev = c.View()
	}

	if s.mounted {
		for _, c := range s.children {
			c.Mounted()
		}
	}
	s.observe("set")
	return len(s.children)
}

// Clear removes every child and returns them. If the slot is mounted each
// child is unmounted before its view is detached.
func (s *Slot) Clear() []Child {
	s.prune()
	removed := s.children
	s.children = nil
	for _, c := range removed {
		s.teardown(c)
	}
	if len(removed) > 0 {
		s.observe("clear")
	}
	return removed
}

// Mount marks the slot mounted and mounts every current child in order.
func (s *Slot) Mount() {
	if s.mounted {
		return
	}
	s.mounted = true
	children := s.Children()
	s.logger.Debug("slot mounted", "children", len(children))
	for _, c := range children {
		c.Mounted()
	}
}

// Unmount unmounts every child in order, detaches them and empties the
// slot.
func (s *Slot) Unmount() {
	s.Clear()
	s.mounted = false
	s.logger.Debug("slot unmounted")
}

// Push appends c. It reports whether c was placed; see Insert.
func (s *Slot) Push(c Child) bool {
	return s.Insert(s.Len(), c)
}

// Pop removes and returns the last child, or nil if the slot is empty.
func (s *Slot) Pop() Child {
	return s.Remove(s.Len() - 1)
}

// Unshift prepends c. It reports whether c was placed; see Insert.
func (s *Slot) Unshift(c Child) bool {
	return s.Insert(0, c)
}

// Shift removes and returns the first child, or nil if the slot is empty.
func (s *Slot) Shift() Child {
	return s.Remove(0)
}

// Insert places c at pos, which must be within 0..Len(). It reports false
// and does nothing when pos is out of range, when c is nil or already in the
// slot, or when the anchor is no longer attached.
func (s *Slot) Insert(pos int, c Child) bool {
	s.prune()
	if pos < 0 || pos > len(s.children) || c == nil || slices.Contains(s.children, c) {
		return false
	}

	ref := s.anchor
	if pos > 0 {
		ref = s.children[pos-1].View()
	}
	if !dom.InsertAfter(ref, c.View()) {
		s.logger.Warn("slot anchor is detached, insert dropped", "pos", pos)
		return false
	}
	s.children = slices.Insert(s.children, pos, c)

	if s.mounted {
		c.Mounted()
	}
	s.observe("insert")
	return true
}

// Remove removes and returns the child at pos, which must be within
// 0..Len()-1. It returns nil when pos is out of range.
func (s *Slot) Remove(pos int) Child {
	s.prune()
	if pos < 0 || pos >= len(s.children) {
		return nil
	}
	c := s.children[pos]
	s.children = slices.Delete(s.children, pos, pos+1)
	s.teardown(c)
	s.observe("remove")
	return c
}

func (s *Slot) teardown(c Child) {
	if s.mounted {
		c.Unmount()
	}
	dom.Detach(c.View())
}

// prune drops children whose views are no longer siblings of the anchor.
// Nothing is pruned while the anchor itself is detached.
func (s *Slot) prune() {
	parent := s.anchor.Parent
	if parent == nil {
		return
	}
	before := len(s.children)
	s.children = slices.DeleteFunc(s.children, func(c Child) bool {
		return c.View().Parent != parent
	})
	if n := before - len(s.children); n > 0 {
		s.logger.Debug("dropped detached children", "count", n)
	}
}

func (s *Slot) observe(op string) {
	if s.observer != nil {
		s.observer.SlotMutated(op)
	}
}
