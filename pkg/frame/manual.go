package frame

// Manual is a Scheduler whose frames advance only when Step is called.
// It is not safe for concurrent use.
type Manual struct {
	next   Handle
	queue  []request
	frames uint64

	// handles of the batch currently being run; a callback may cancel a
	// later callback of the same frame.
	running map[Handle]bool
}

// NewManual creates a manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame queues fn for the next Step.
func (m *Manual) RequestFrame(fn func()) Handle {
	m.next++
	m.queue = append(m.queue, request{handle: m.next, fn: fn})
	return m.next
}

// CancelFrame removes a queued callback.
func (m *Manual) CancelFrame(h Handle) {
	if m.running[h] {
		delete(m.running, h)
		return
	}
	for i, r := range m.queue {
		if r.handle == h {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}

// Pending returns the number of callbacks waiting for the next frame.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// Frames returns the number of frames processed so far.
func (m *Manual) Frames() uint64 {
	return m.frames
}

// Step processes one frame: it runs every callback that was queued before
// the call, in request order. Callbacks queued by those callbacks wait for
// the next Step. Step returns the number of callbacks run.
func (m *Manual) Step() int {
	m.frames++
	batch := m.queue
	m.queue = nil

	m.running = make(map[Handle]bool, len(batch))
	for _, r := range batch {
		m.running[r.handle] = true
	}

	ran := 0
	for _, r := range batch {
		if !m.running[r.handle] {
			continue
		}
		delete(m.running, r.handle)
		r.fn()
		ran++
	}
	m.running = nil
	return ran
}

// Settle steps until no callbacks are pending or max frames have run, and
// returns the number of frames stepped.
func (m *Manual) Settle(max int) int {
	n := 0
	for m.Pending() > 0 && n < max {
		m.Step()
		n++
	}
	return n
}
