package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusConfig configures the Prometheus recorder.
type PrometheusConfig struct {
	// Namespace is the metrics namespace (default: "weave").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// PrometheusOption configures the Prometheus recorder.
type PrometheusOption func(*PrometheusConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) PrometheusOption {
	return func(c *PrometheusConfig) {
		c.Registry = registry
	}
}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	constructed *prometheus.CounterVec
	mounted     *prometheus.CounterVec
	unmounted   *prometheus.CounterVec
	active      prometheus.Gauge
	updates     *prometheus.CounterVec
	updatedKeys *prometheus.CounterVec
	failures    *prometheus.CounterVec
	slotOps     *prometheus.CounterVec
}

// NewPrometheus creates and registers the weave collectors. Registering
// twice against the same registry panics, as promauto does.
func NewPrometheus(opts ...PrometheusOption) *Prometheus {
	cfg := PrometheusConfig{
		Namespace: "weave",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
	}

	return &Prometheus{
		constructed: counter("components_constructed_total", "Components constructed", "component"),
		mounted:     counter("components_mounted_total", "Components that completed the mount barrier", "component"),
		unmounted:   counter("components_unmounted_total", "Mounted components that were unmounted", "component"),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "components_mounted",
			Help:        "Components currently mounted",
			ConstLabels: cfg.ConstLabels,
		}),
		updates:     counter("state_updates_total", "State store Update calls", "component"),
		updatedKeys: counter("state_updated_keys_total", "Keys committed by Update calls", "component"),
		failures:    counter("listener_failures_total", "Update calls in which a listener failed", "component"),
		slotOps:     counter("slot_mutations_total", "Slot mutations by operation", "op"),
	}
}

func (p *Prometheus) ComponentConstructed(name string) {
	p.constructed.WithLabelValues(name).Inc()
}

func (p *Prometheus) ComponentMounted(name string) {
	p.mounted.WithLabelValues(name).Inc()
	p.active.Inc()
}

func (p *Prometheus) ComponentUnmounted(name string) {
	p.unmounted.WithLabelValues(name).Inc()
	p.active.Dec()
}

func (p *Prometheus) StateUpdated(component string, keys int) {
	p.updates.WithLabelValues(component).Inc()
	p.updatedKeys.WithLabelValues(component).Add(float64(keys))
}

func (p *Prometheus) ListenerFailed(component string) {
	p.failures.WithLabelValues(component).Inc()
}

func (p *Prometheus) SlotMutated(op string) {
	p.slotOps.WithLabelValues(op).Inc()
}
