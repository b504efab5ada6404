package taskflow

import (
	"sync"
)

// ResolveFunc publishes the outcome of a computation into its paired Future.
// Only the first call has any effect.
type ResolveFunc[V any] func(value V, err error)

// A Future represents a value that will be available at some point in the
// future. It is created together with the ResolveFunc that completes it.
type Future[V any] struct {
	done  chan struct{}
	once  sync.Once
	value V
	err   error
}

// NewFuture creates a Future and the ResolveFunc that completes it.
func NewFuture[V any]() (*Future[V], ResolveFunc[V]) {
	f := &Future[V]{
		done: make(chan struct{}),
	}
	resolve := func(value V, err error) {
		f.once.Do(func() {
			f.value = value
			f.err = err
			close(f.done)
		})
	}
	return f, resolve
}

// Done returns a channel that is closed when the future is resolved.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has been resolved, without blocking.
func (f *Future[V]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the future is resolved and returns the value or the
// failure it was resolved with.
func (f *Future[V]) Get() (V, error) {
	<-f.done
	return f.value, f.err
}

// Wait blocks until the future is resolved and returns any error that occurred.
func (f *Future[V]) Wait() error {
	<-f.done
	return f.err
}

// await implements pollable, erasing the value type so tasks can hold
// futures of heterogeneous value types in a single argument list.
func (f *Future[V]) await() (any, error) {
	v, err := f.Get()
	return v, err
}
