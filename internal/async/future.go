// Package async provides a single-assignment future used to model pending token results.
//
// A Future is completed exactly once, either with a value (Resolve) or an error
// (Reject). Later completions are ignored. Consumers block in Await or select on Done.
package async

import (
	"context"
	"sync"
)

// Future is a value that becomes available later.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// New returns an incomplete future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already completed with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// Failed returns a future already completed with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolve completes the future with v. It reports whether this call completed it.
func (f *Future[T]) Resolve(v T) bool {
	return f.complete(v, nil)
}

// Reject completes the future with err. It reports whether this call completed it.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.complete(zero, err)
}

func (f *Future[T]) complete(v T, err error) bool {
	first := false
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
		first = true
	})
	return first
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has completed.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on a new goroutine and returns its future.
// A panic inside fn is not recovered.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Then chains fn after src. Errors from src skip fn and propagate unchanged.
func Then[T, U any](ctx context.Context, src *Future[T], fn func(T) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		v, err := src.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}
