package taskflow

import (
	"fmt"
	"reflect"
)

// pollable is implemented by *Future values of any type parameter. It is the
// non-blocking readiness probe plus the type-erased blocking read a task
// needs to treat future-typed arguments uniformly.
type pollable interface {
	Ready() bool
	await() (any, error)
}

// taskModel is the erased shape behind a Task: one deferred invocation and
// one non-blocking readiness query.
type taskModel interface {
	invoke() error
	ready() bool
}

// A Task is a type-erased deferred invocation carrying a callable and its
// bound arguments. Its result is published through the Future returned by
// MakeReady or MakeAwaitable.
//
// The zero Task is empty. Tasks are single-shot: after Invoke returns, the
// task must not be invoked again.
type Task struct {
	model taskModel
}

// Empty reports whether the task holds no model.
func (t Task) Empty() bool {
	return t.model == nil
}

// Invoke runs the task's callable. Future-typed arguments are resolved first
// with a blocking read; a failed dependency fails the task without calling
// the callable. The outcome, including a recovered panic, is published
// through the task's future and also returned for caller-side accounting.
//
// Invoke panics with ErrBadTaskAccess when the task is empty.
func (t Task) Invoke() error {
	if t.model == nil {
		panic(ErrBadTaskAccess)
	}
	return t.model.invoke()
}

// Ready reports whether invoking the task would not block on an argument:
// always true for ready tasks, and true for awaitable tasks iff every
// future-typed argument polls ready under a zero-duration wait.
//
// Ready panics with ErrBadTaskAccess when the task is empty.
func (t Task) Ready() bool {
	if t.model == nil {
		panic(ErrBadTaskAccess)
	}
	return t.model.ready()
}

// MakeReady builds a task whose arguments all pass through to the callable
// unchanged, so invocation never blocks. It returns the task and the future
// its result will be published through.
//
// fn may have any signature with one parameter per bound argument and up to
// two results, the second of which must be an error. R must match the
// callable's value result (use struct{} for callables without one).
func MakeReady[R any](fn any, args ...any) (Task, *Future[R]) {
	return makeTask[R](fn, args, false)
}

// MakeAwaitable builds a task where any argument may be a *Future: at invoke
// time future arguments are replaced by their resolved values, and the
// task's Ready query polls them without blocking. Non-future arguments pass
// through unchanged, as in MakeReady.
func MakeAwaitable[R any](fn any, args ...any) (Task, *Future[R]) {
	return makeTask[R](fn, args, true)
}

func makeTask[R any](fn any, args []any, awaitable bool) (Task, *Future[R]) {
	validateCallable(fn, args)
	fut, resolve := NewFuture[R]()
	m := &model[R]{
		fn:        fn,
		args:      args,
		resolve:   resolve,
		awaitable: awaitable,
	}
	return Task{model: m}, fut
}

// validateCallable rejects shapes the invoker cannot handle. Misuse is a
// programming error and surfaces at construction, in the caller's frame.
func validateCallable(fn any, args []any) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		panic(fmt.Sprintf("taskflow: unsupported callable type: %#v", fn))
	}
	if t.IsVariadic() {
		panic(fmt.Sprintf("taskflow: variadic callables are not supported: %s", t))
	}
	if t.NumIn() != len(args) {
		panic(fmt.Sprintf("taskflow: callable %s takes %d arguments, %d bound", t, t.NumIn(), len(args)))
	}
	if t.NumOut() > 2 {
		panic(fmt.Sprintf("taskflow: callable %s returns more than two values", t))
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		panic(fmt.Sprintf("taskflow: callable %s second result must be error", t))
	}
}

// model is the single generic implementation behind both task flavours. The
// awaitable flag selects whether argument slots are probed and resolved as
// futures.
type model[R any] struct {
	fn        any
	args      []any
	resolve   ResolveFunc[R]
	awaitable bool
}

func (m *model[R]) ready() bool {
	if !m.awaitable {
		return true
	}
	for _, arg := range m.args {
		if p, ok := arg.(pollable); ok && !p.Ready() {
			return false
		}
	}
	return true
}

func (m *model[R]) invoke() (err error) {
	var result R
	defer func() {
		if p := recover(); p != nil {
			if perr, ok := p.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanic, perr)
			} else {
				err = fmt.Errorf("%w: %v", ErrPanic, p)
			}
		}
		m.resolve(result, err)
	}()

	args := m.args
	if m.awaitable {
		args = make([]any, len(m.args))
		for i, arg := range m.args {
			if p, ok := arg.(pollable); ok {
				v, derr := p.await()
				if derr != nil {
					err = fmt.Errorf("%w: %w", ErrDependency, derr)
					return
				}
				args[i] = v
			} else {
				args[i] = arg
			}
		}
	}

	result, err = call[R](m.fn, args)
	return
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// call invokes fn with args and maps its results onto (R, error). The
// common zero-argument shapes dispatch through a plain type switch; every
// other shape goes through reflection.
func call[R any](fn any, args []any) (R, error) {
	var zero R

	if len(args) == 0 {
		switch f := fn.(type) {
		case func():
			f()
			return zero, nil
		case func() error:
			return zero, f()
		case func() R:
			return f(), nil
		case func() (R, error):
			return f()
		}
	}

	return reflectCall[R](fn, args)
}

func reflectCall[R any](fn any, args []any) (R, error) {
	var zero R

	fv := reflect.ValueOf(fn)
	ft := fv.Type()

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(ft.In(i))
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}

	out := fv.Call(in)

	switch len(out) {
	case 0:
		return zero, nil
	case 1:
		if ft.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return zero, err
		}
		result, ok := out[0].Interface().(R)
		if !ok {
			return zero, fmt.Errorf("%w: result is %s, want %T", ErrInvalidCallable, ft.Out(0), zero)
		}
		return result, nil
	default:
		err, _ := out[1].Interface().(error)
		result, ok := out[0].Interface().(R)
		if !ok && err == nil {
			return zero, fmt.Errorf("%w: result is %s, want %T", ErrInvalidCallable, ft.Out(0), zero)
		}
		return result, err
	}
}
