// Package optimistic provides a two-state value container for optimistic UI updates.
//
// Optimistic updates let an application immediately display the expected
// result of an operation before the server roundtrip completes, with a
// remembered fallback to roll back to if the operation fails. A Value is
// always in exactly one of two states:
//
//   - Resolved: the displayed value is authoritative; no fallback is kept
//   - Pending: the displayed value is an optimistic guess; the last
//     confirmed value is retained as the fallback
//
// All transitions are pure: they never mutate the receiver and return a new
// Value. Whoever holds the latest returned instance holds the current state.
//
// Basic Usage:
//
//	likes := optimistic.FromResolved(42)
//
//	// User clicks "like" - show 43 immediately.
//	likes = likes.Push(43)
//	render(likes.Unwrap()) // 43, likes.IsPending() == true
//
//	// Server confirms (or fails).
//	count, err := api.Like(postID)
//	likes = likes.Resolve(count, err)
//	render(likes.Unwrap()) // confirmed count, or 42 again on failure
//
// Repeated pushes never deepen the rollback target: the fallback always
// points at the most recent confirmed value, so a revert after any number
// of optimistic updates lands on known-good state.
//
// For a shared "current state" updated from multiple goroutines, see the
// store subpackage, which serializes transitions and notifies subscribers.
package optimistic
