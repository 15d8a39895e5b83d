// Package component ties a template instance, its bindings, its slots and a
// state store into a component with a mount lifecycle.
//
// A component moves through three states:
//
//	Constructed -> Mounted -> Unmounted
//
// New builds the view from a registered template, seeds the store from the
// bindings' current values and applies the caller's props in one update,
// all before the view is attached anywhere. Mount appends the view to a
// parent node and starts the mounted sequence, which waits for two frames
// from the component's frame.Scheduler before mounting slot children and
// emitting EventMounted. Unmount tears down slot children first, cancels a
// pending barrier and only then detaches the view. Unmounted is terminal.
//
// Components are not safe for concurrent use. Drive them from the goroutine
// that runs their scheduler.
package component
