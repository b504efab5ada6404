package taskflow

import "errors"

var (
	// ErrPanic is wrapped around panics recovered from a task's callable.
	ErrPanic = errors.New("task panicked")

	// ErrBadTaskAccess is the panic value raised when invoking or polling
	// an empty Task.
	ErrBadTaskAccess = errors.New("bad task access")

	// ErrDependency is wrapped around failures propagated from a task's
	// future-typed arguments.
	ErrDependency = errors.New("task dependency failed")

	// ErrInvalidCallable is wrapped around invocation failures caused by a
	// callable whose shape cannot be mapped to a task result.
	ErrInvalidCallable = errors.New("invalid callable")
)
