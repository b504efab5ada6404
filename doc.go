// Package taskflow is a multi-queue, work-stealing task scheduler with
// first-class support for dataflow tasks: tasks whose arguments may
// themselves be pending results of other tasks.
//
// A TaskSystem owns N worker goroutines and N+1 queues. Queue 0 is the
// main-thread queue, drained explicitly by the host through RunOnMain, so
// selected work can be pinned to the goroutine driving the host's main
// loop. Submissions round-robin over the worker queues, and idle workers
// probe the whole ring before blocking on their own queue, which yields
// work stealing without explicit victim selection.
//
// Tasks come in two flavours. Ready tasks carry plain argument values and
// never block when invoked:
//
//	task, fut := taskflow.MakeReady[int](func(a, b int) int { return a + b }, 2, 3)
//
// Awaitable tasks may take futures in any argument slot; the blocking pop
// of a queue skips over tasks whose futures are still pending, so a worker
// keeps picking runnable work while a dependency chain resolves:
//
//	sum := taskflow.PushReady[int](system, func() int { return 40 })
//	out := taskflow.PushAwaitable[int](system, func(x int) int { return x + 2 }, sum)
//	v, err := out.Get() // 42
package taskflow
