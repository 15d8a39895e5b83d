// Package metrics records runtime activity of weave components.
//
// Components, stores and slots report through a Recorder. Nop discards
// everything and is the default; Prometheus exports counters and a gauge
// through a Prometheus registerer:
//
//	rec := metrics.NewPrometheus(metrics.WithNamespace("myapp"))
//	c, err := component.New(reg, def, props, component.WithRecorder(rec))
package metrics

// Recorder receives runtime events.
type Recorder interface {
	ComponentConstructed(name string)
	ComponentMounted(name string)
	ComponentUnmounted(name string)
	StateUpdated(component string, keys int)
	ListenerFailed(component string)
	SlotMutated(op string)
}

// Nop is a Recorder that does nothing.
type Nop struct{}

func (Nop) ComponentConstructed(string) {}
func (Nop) ComponentMounted(string)     {}
func (Nop) ComponentUnmounted(string)   {}
func (Nop) StateUpdated(string, int)    {}
func (Nop) ListenerFailed(string)       {}
func (Nop) SlotMutated(string)          {}
