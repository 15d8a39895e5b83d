package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(WithRegistry(reg), WithNamespace("test"))

	p.ComponentConstructed("card")
	p.ComponentConstructed("card")
	p.ComponentMounted("card")
	p.ComponentMounted("item")
	p.ComponentUnmounted("item")
	p.StateUpdated("card", 3)
	p.StateUpdated("card", 2)
	p.ListenerFailed("card")
	p.SlotMutated("insert")
	p.SlotMutated("insert")
	p.SlotMutated("clear")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"constructed", testutil.ToFloat64(p.constructed.WithLabelValues("card")), 2},
		{"mounted", testutil.ToFloat64(p.mounted.WithLabelValues("item")), 1},
		{"active", testutil.ToFloat64(p.active), 1},
		{"updates", testutil.ToFloat64(p.updates.WithLabelValues("card")), 2},
		{"updated keys", testutil.ToFloat64(p.updatedKeys.WithLabelValues("card")), 5},
		{"failures", testutil.ToFloat64(p.failures.WithLabelValues("card")), 1},
		{"slot inserts", testutil.ToFloat64(p.slotOps.WithLabelValues("insert")), 2},
		{"slot clears", testutil.ToFloat64(p.slotOps.WithLabelValues("clear")), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(reg); n == 0 {
		t.Error("no metrics registered")
	}
}

func TestPrometheusConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(
		WithRegistry(reg),
		WithSubsystem("runtime"),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
	)
	p.ComponentMounted("card")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "weave_runtime_components_mounted" {
			found = true
			labels := f.GetMetric()[0].GetLabel()
			if len(labels) != 1 || labels[0].GetName() != "app" || labels[0].GetValue() != "demo" {
				t.Errorf("labels = %v", labels)
			}
		}
	}
	if !found {
		t.Error("weave_runtime_components_mounted not gathered")
	}
}

func TestNopIsRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.ComponentConstructed("x")
	r.SlotMutated("insert")
}
