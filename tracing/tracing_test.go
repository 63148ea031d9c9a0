package tracing

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/optimistic/store"
)

// Compile-time check that Observer satisfies store.Observer.
var _ store.Observer = (*Observer)(nil)

func TestOptions(t *testing.T) {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range []Option{
		WithTracerName("my-app"),
		WithAttributes(attribute.String("field", "likes")),
		WithAttributes(attribute.Int("widget", 7)),
	} {
		opt(&config)
	}

	if config.TracerName != "my-app" {
		t.Errorf("TracerName = %q, want %q", config.TracerName, "my-app")
	}
	if len(config.Attributes) != 2 {
		t.Errorf("len(Attributes) = %d, want 2", len(config.Attributes))
	}
}

func TestTransitionWithNoopProvider(t *testing.T) {
	// Without a configured tracer provider the global provider is a no-op;
	// every transition must still be safe to record.
	obs := New(WithAttributes(attribute.String("field", "likes")))

	s := store.New(1, store.WithObserver(obs))
	s.Push(2)
	s.Update(func(n int) int { return n + 1 })
	s.Resolve(3, nil)
	s.Push(4)
	s.Revert()

	if got := s.Current(); got != 3 {
		t.Errorf("Current() = %d, want 3", got)
	}
}

func TestObserverSharedAcrossStores(t *testing.T) {
	obs := New()

	a := store.New(0, store.WithObserver(obs))
	b := store.New("", store.WithObserver(obs))

	a.Push(1)
	b.Push("x")
	a.Force()
	b.Revert()

	if a.Current() != 1 {
		t.Errorf("a.Current() = %d, want 1", a.Current())
	}
	if b.Current() != "" {
		t.Errorf("b.Current() = %q, want empty", b.Current())
	}
}
