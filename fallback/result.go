// Package fallback expresses degrade-gracefully calls: run a call once, and if it fails
// substitute a fixed value instead of surfacing the error.
package fallback

import "context"

// Result holds the outcome of a call
type Result[T any] struct {
	Value T
	Err   error
}

// Try runs fn once and captures its outcome
func Try[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	return Result[T]{Value: v, Err: err}
}

// OrElse returns the call's value, or fallback() when it failed. The second return value
// reports whether the fallback was used.
func (r Result[T]) OrElse(fallback func() T) (T, bool) {
	if r.Err != nil {
		return fallback(), true
	}
	return r.Value, false
}

// OnFallback calls hook with the error when the call failed and returns r unchanged
func (r Result[T]) OnFallback(hook func(error)) Result[T] {
	if r.Err != nil && hook != nil {
		hook(r.Err)
	}
	return r
}
