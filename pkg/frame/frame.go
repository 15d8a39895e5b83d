// Package frame provides "next frame" scheduling for weave views.
//
// A Scheduler runs callbacks at the start of the next rendering frame, the
// way a browser runs requestAnimationFrame callbacks. Callbacks requested
// while a frame is being processed run in the following frame, so two
// successive requests are guaranteed to straddle a frame boundary.
//
// Three schedulers are provided:
//
//   - Manual: frames advance only when Step is called. Deterministic; used by
//     tests and by the CLI renderer.
//   - Loop: a ticker-driven loop that runs queued work and frame callbacks on
//     a single goroutine. Used by the preview server.
//   - Immediate: runs callbacks synchronously. This collapses the frame
//     barrier into a single synchronization point for environments without a
//     frame clock.
package frame

// Handle identifies a requested frame callback. The zero Handle is never
// issued.
type Handle uint64

// Scheduler schedules callbacks for the next frame.
type Scheduler interface {
	// RequestFrame schedules fn to run at the next frame.
	RequestFrame(fn func()) Handle

	// CancelFrame cancels a pending callback. Cancelling a callback that
	// already ran, or an unknown handle, is a no-op.
	CancelFrame(h Handle)
}

type request struct {
	handle Handle
	fn     func()
}

// Immediate is a Scheduler that runs every callback synchronously inside
// RequestFrame.
type Immediate struct {
	next Handle
}

// RequestFrame runs fn before returning.
func (s *Immediate) RequestFrame(fn func()) Handle {
	s.next++
	h := s.next
	fn()
	return h
}

// CancelFrame is a no-op: callbacks have always run already.
func (s *Immediate) CancelFrame(Handle) {}
