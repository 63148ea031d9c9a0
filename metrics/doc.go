// Package metrics provides a Prometheus-backed store.Observer.
//
// Attach it to a store to count transitions by kind and rollbacks caused
// by failed outcomes:
//
//	likes := store.New(int64(0),
//	    store.WithObserver(metrics.New(metrics.WithNamespace("myapp"))),
//	)
//
// Exported metrics:
//
//	<ns>_optimistic_transitions_total{op}  counter, one per transition
//	<ns>_optimistic_rollbacks_total        counter, reverts and failed outcomes
package metrics
