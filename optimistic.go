package optimistic

// Value is an immutable optimistic value container.
//
// A Value is either resolved (the displayed value is authoritative) or
// pending (the displayed value is an optimistic guess, with the last
// confirmed value retained as a fallback). The zero Value is resolved and
// displays the zero value of T; prefer FromResolved for clarity.
//
// Values are plain data: copy them, pass them by value, and replace them
// with the result of each transition. No transition mutates its receiver.
type Value[T any] struct {
	value    T
	fallback T
	pending  bool
}

// FromResolved creates a resolved Value displaying v.
// This is the only way into the type; a pending Value can only arise from
// Push or Update on an existing one.
func FromResolved[T any](v T) Value[T] {
	return Value[T]{value: v}
}

// IsResolved reports whether the displayed value is authoritative.
func (c Value[T]) IsResolved() bool {
	return !c.pending
}

// IsPending reports whether the displayed value is an unconfirmed guess.
func (c Value[T]) IsPending() bool {
	return c.pending
}

// Unwrap returns the currently displayed value. It is defined in both
// states and is what rendering code should read.
func (c Value[T]) Unwrap() T {
	return c.value
}

// Fallback returns the retained confirmed value and true when c is
// pending. When c is resolved there is no fallback and ok is false.
func (c Value[T]) Fallback() (fallback T, ok bool) {
	if !c.pending {
		var zero T
		return zero, false
	}
	return c.fallback, true
}

// Push transitions to pending with v as the displayed value.
//
// From a resolved Value, the previously confirmed value becomes the
// fallback. From a pending Value, the fallback is preserved unchanged:
// successive pushes move the displayed value forward but rollback always
// targets the most recent confirmed value, never an earlier guess.
func (c Value[T]) Push(v T) Value[T] {
	if c.pending {
		return Value[T]{value: v, fallback: c.fallback, pending: true}
	}
	return Value[T]{value: v, fallback: c.value, pending: true}
}

// Update is Push with a computed value: the new displayed value is
// f(fallback), where the fallback is the last confirmed value (the current
// value when c is resolved).
//
// Note that f is applied to the fallback, not to the currently displayed
// value. Repeated optimistic updates therefore compose against the
// last-known-good baseline instead of compounding on top of an earlier
// guess:
//
//	v := optimistic.FromResolved(10)
//	v = v.Update(func(n int) int { return n + 1 }) // displays 11
//	v = v.Update(func(n int) int { return n + 1 }) // displays 11, not 12
func (c Value[T]) Update(f func(T) T) Value[T] {
	if c.pending {
		return Value[T]{value: f(c.fallback), fallback: c.fallback, pending: true}
	}
	return Value[T]{value: f(c.value), fallback: c.value, pending: true}
}

// Force commits the displayed value as authoritative, discarding the
// fallback permanently. A resolved Value is returned unchanged. Use it to
// commit to an optimistic value without waiting for confirmation.
func (c Value[T]) Force() Value[T] {
	if !c.pending {
		return c
	}
	return Value[T]{value: c.value}
}

// Revert abandons the optimistic value and resolves to the fallback.
// A resolved Value is returned unchanged.
func (c Value[T]) Revert() Value[T] {
	if !c.pending {
		return c
	}
	return Value[T]{value: c.fallback}
}

// Resolve finalizes a pending update with the operation's outcome.
//
// On success (err == nil) the result is resolved to v unconditionally,
// regardless of prior state: v is the authoritative value replacing
// everything. On failure the result is Revert(); the error itself is never
// inspected, only its presence.
func (c Value[T]) Resolve(v T, err error) Value[T] {
	if err != nil {
		return c.Revert()
	}
	return Value[T]{value: v}
}

// Try finalizes a pending update with an outcome that is a delta rather
// than a replacement value, such as a server-confirmed item to append.
//
// On success (err == nil) the result is resolved to combine(base, a),
// where base is the last confirmed baseline: c's fallback when pending,
// c's value when resolved. The combiner is deliberately applied to the
// baseline and not to the optimistic guess, so the confirmed delta lands
// on known-good state. On failure the result is c.Revert().
//
// Try is a function rather than a method because the outcome type U is
// independent of T.
func Try[T, U any](c Value[T], a U, err error, combine func(T, U) T) Value[T] {
	if err != nil {
		return c.Revert()
	}
	base := c.value
	if c.pending {
		base = c.fallback
	}
	return Value[T]{value: combine(base, a)}
}
