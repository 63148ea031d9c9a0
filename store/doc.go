// Package store provides a shared, subscription-based holder for an
// optimistic value.
//
// The core optimistic.Value is a plain immutable value; when several
// goroutines update the same logical state (for example, multiple in-flight
// requests behind one UI field), something has to serialize the transitions
// and fan out the result. Store does exactly that: it holds the current
// Value behind a lock, applies transitions atomically, and notifies
// subscribers with the new container after each one.
//
// Usage:
//
//	likes := store.New(int64(42))
//
//	unsubscribe := likes.Subscribe(func(v optimistic.Value[int64]) {
//	    render(v.Unwrap(), v.IsPending())
//	})
//	defer unsubscribe()
//
//	likes.Push(43)                  // render(43, true)
//	likes.Resolve(api.Like(postID)) // render(confirmed, false)
//
// Observers (see the metrics and tracing packages) receive one callback per
// transition and are the integration point for instrumentation.
package store
