package component

import (
	"fmt"
	"slices"
)

// Lifecycle events emitted on the component's own channel.
const (
	EventMounted   = "mounted"
	EventUnmounted = "unmounted"
)

// Handler receives an emitted payload.
type Handler func(payload any)

// EventSubscription identifies one registered handler.
type EventSubscription struct {
	event string
	id    uint64
}

// Event returns the event name the handler was registered for.
func (s EventSubscription) Event() string { return s.event }

type handlerEntry struct {
	id uint64
	fn Handler
}

// On registers h for event. Handlers for one event run in registration
// order.
func (c *Component) On(event string, h Handler) EventSubscription {
	if c.handlers == nil {
		c.handlers = make(map[string][]handlerEntry)
	}
	c.nextHandlerID++
	c.handlers[event] = append(c.handlers[event], handlerEntry{id: c.nextHandlerID, fn: h})
	return EventSubscription{event: event, id: c.nextHandlerID}
}

// Off removes a handler and reports whether it was registered.
func (c *Component) Off(sub EventSubscription) bool {
	list := c.handlers[sub.event]
	for i, e := range list {
		if e.id == sub.id {
			c.handlers[sub.event] = slices.Delete(slices.Clone(list), i, i+1)
			return true
		}
	}
	return false
}

// Emit calls every handler registered for event with payload. A panicking
// handler is logged and does not stop the others.
func (c *Component) Emit(event string, payload any) {
	for _, e := range slices.Clone(c.handlers[event]) {
		c.dispatch(event, e.fn, payload)
	}
}

func (c *Component) dispatch(event string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("event handler panicked", "event", event, "error", fmt.Sprint(r))
		}
	}()
	fn(payload)
}
