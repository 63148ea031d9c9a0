// Package tracing provides an OpenTelemetry-backed store.Observer.
//
// Each transition is recorded as a short span named "optimistic.<op>" with
// the transition kind and resulting state as attributes. Rollbacks caused
// by failed outcomes set the span status to Error.
//
//	likes := store.New(int64(0),
//	    store.WithObserver(tracing.New(tracing.WithTracerName("my-app"))),
//	)
//
// The tracer comes from the global OpenTelemetry tracer provider; configure
// that in main() before creating observers.
package tracing
