package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/optimistic/store"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserverCountsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg), WithNamespace("test"))

	s := store.New(1, store.WithObserver(obs))
	s.Push(2)
	s.Push(3)
	s.Resolve(3, nil)
	s.Push(4)
	s.Resolve(0, errors.New("nope"))
	s.Push(5)
	s.Revert()

	wantOps := map[string]float64{
		"push":    4,
		"resolve": 1,
		"reject":  1,
		"revert":  1,
	}
	for op, want := range wantOps {
		c, err := obs.transitionsTotal.GetMetricWithLabelValues(op)
		if err != nil {
			t.Fatalf("GetMetricWithLabelValues(%q) error: %v", op, err)
		}
		if got := counterValue(t, c); got != want {
			t.Errorf("transitions_total{op=%q} = %v, want %v", op, got, want)
		}
	}

	if got := counterValue(t, obs.rollbacksTotal); got != 2 {
		t.Errorf("rollbacks_total = %v, want 2 (one reject, one revert)", got)
	}
}

func TestObserverSharedAcrossStores(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg))

	a := store.New(0, store.WithObserver(obs))
	b := store.New("", store.WithObserver(obs))

	a.Push(1)
	b.Push("x")

	c, err := obs.transitionsTotal.GetMetricWithLabelValues("push")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues error: %v", err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("transitions_total{op=push} = %v, want 2", got)
	}
}

func TestWithConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"field": "likes"}),
	)

	s := store.New(0, store.WithObserver(obs))
	s.Push(1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	found := false
	for _, fam := range families {
		if fam.GetName() == "app_ui_transitions_total" {
			found = true
			for _, m := range fam.GetMetric() {
				hasLabel := false
				for _, l := range m.GetLabel() {
					if l.GetName() == "field" && l.GetValue() == "likes" {
						hasLabel = true
					}
				}
				if !hasLabel {
					t.Error("transitions_total missing const label field=likes")
				}
			}
		}
	}
	if !found {
		t.Error("app_ui_transitions_total not registered")
	}
}
