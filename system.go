package taskflow

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const (
	// mainQueueIndex is the queue drained by RunOnMain. Workers never
	// probe it, so main-targeted work cannot be stolen.
	mainQueueIndex = 0

	// mainProbeAttempts bounds the non-blocking probes RunOnMain and the
	// main-targeted push perform before falling back to a blocking call.
	mainProbeAttempts = 10
)

// A TaskSystem owns N worker goroutines and N+1 task queues. Queue 0 is the
// main-thread queue, drained explicitly through RunOnMain; queues 1..N each
// have a dedicated worker. Idle workers probe the whole worker-queue ring
// before blocking on their home queue, which yields work stealing without
// explicit victim selection.
type TaskSystem struct {
	queues      []*taskQueue
	workers     int
	stealFactor int
	counter     atomic.Uint64
	logger      *slog.Logger

	workerWaitGroup sync.WaitGroup
	runningWorkers  atomic.Int64
	submittedTasks  atomic.Uint64
	successfulTasks atomic.Uint64
	failedTasks     atomic.Uint64
	stolenTasks     atomic.Uint64
}

// New creates a task system and starts its workers. Without options the
// worker count defaults to the number of CPUs minus one, leaving one for
// the host's main loop. A system with zero workers is valid: every
// submission is then routed to the main queue.
func New(options ...Option) *TaskSystem {
	s := &TaskSystem{
		workers:     defaultWorkers(),
		stealFactor: defaultStealFactor,
		logger:      defaultLogger(),
	}
	for _, option := range options {
		option(s)
	}
	if s.workers < 0 {
		s.workers = 0
	}
	if s.stealFactor < 1 {
		s.stealFactor = defaultStealFactor
	}

	s.queues = make([]*taskQueue, s.workers+1)
	for i := range s.queues {
		s.queues[i] = newTaskQueue()
	}

	s.workerWaitGroup.Add(s.workers)
	for idx := 1; idx <= s.workers; idx++ {
		go s.run(idx)
	}
	return s
}

// Workers returns the number of worker goroutines the system was built with.
func (s *TaskSystem) Workers() int {
	return s.workers
}

// SubmittedTasks returns the number of tasks submitted since creation.
func (s *TaskSystem) SubmittedTasks() uint64 {
	return s.submittedTasks.Load()
}

// SuccessfulTasks returns the number of tasks that completed without error.
func (s *TaskSystem) SuccessfulTasks() uint64 {
	return s.successfulTasks.Load()
}

// FailedTasks returns the number of tasks that completed with a failure,
// including recovered panics and failed dependencies.
func (s *TaskSystem) FailedTasks() uint64 {
	return s.failedTasks.Load()
}

// CompletedTasks returns the total number of tasks that have run.
func (s *TaskSystem) CompletedTasks() uint64 {
	return s.successfulTasks.Load() + s.failedTasks.Load()
}

// StolenTasks returns the number of tasks a worker popped from a queue
// other than its home queue.
func (s *TaskSystem) StolenTasks() uint64 {
	return s.stolenTasks.Load()
}

// WaitingTasks returns the number of tasks currently sitting in queues.
func (s *TaskSystem) WaitingTasks() int {
	total := 0
	for _, q := range s.queues {
		total += q.len()
	}
	return total
}

// RunningWorkers returns the number of worker goroutines that have not yet
// exited.
func (s *TaskSystem) RunningWorkers() int64 {
	return s.runningWorkers.Load()
}

// Push routes an already-constructed task to the worker queues, or to the
// main queue when the system has no workers. Panics with ErrBadTaskAccess
// when the task is empty.
func (s *TaskSystem) Push(t Task) {
	if t.Empty() {
		panic(ErrBadTaskAccess)
	}
	s.submittedTasks.Add(1)
	s.dispatch(t)
}

// PushOnMain routes an already-constructed task to the main queue. Panics
// with ErrBadTaskAccess when the task is empty.
func (s *TaskSystem) PushOnMain(t Task) {
	if t.Empty() {
		panic(ErrBadTaskAccess)
	}
	s.submittedTasks.Add(1)
	s.dispatchMain(t)
}

// RunOnMain drains one task from the main queue and runs it on the calling
// goroutine. The host is expected to call this periodically, e.g. once per
// frame. It blocks when the main queue is empty and returns without work
// once the queue is done and empty.
func (s *TaskSystem) RunOnMain() {
	q := s.queues[mainQueueIndex]

	var t Task
	var ok bool
	for k := 0; k < mainProbeAttempts; k++ {
		if t, ok = q.tryPop(); ok {
			break
		}
	}
	if !ok {
		if t, ok = q.pop(); !ok {
			return
		}
	}

	s.invoke(t)
}

// Done marks every queue as terminated, waking all blocked waiters. It can
// be called any number of times. Tasks still queued are not discarded: a
// blocking pop keeps returning them until the queue is empty, so workers run
// what is left in their queues before they exit, and tasks on the main queue
// still run when the host calls RunOnMain.
func (s *TaskSystem) Done() {
	for _, q := range s.queues {
		q.setDone()
	}
}

// Close marks every queue done and joins the workers. A worker exits only
// once its home queue is empty, so tasks already in the worker queues run
// before Close returns. Close does not run tasks on the main queue, and
// tasks submitted after Close are never run; their futures do not resolve.
func (s *TaskSystem) Close() error {
	s.Done()
	s.workerWaitGroup.Wait()
	return nil
}

// PushReady builds a ready task from fn and args, submits it to the worker
// queues and returns its future. See MakeReady for the accepted callable
// shapes.
func PushReady[R any](s *TaskSystem, fn any, args ...any) *Future[R] {
	t, fut := MakeReady[R](fn, args...)
	s.Push(t)
	return fut
}

// PushAwaitable builds an awaitable task from fn and args, submits it to
// the worker queues and returns its future. Arguments that are futures are
// resolved when the task runs. See MakeAwaitable.
func PushAwaitable[R any](s *TaskSystem, fn any, args ...any) *Future[R] {
	t, fut := MakeAwaitable[R](fn, args...)
	s.Push(t)
	return fut
}

// PushReadyOnMain is PushReady targeted at the main queue.
func PushReadyOnMain[R any](s *TaskSystem, fn any, args ...any) *Future[R] {
	t, fut := MakeReady[R](fn, args...)
	s.PushOnMain(t)
	return fut
}

// PushAwaitableOnMain is PushAwaitable targeted at the main queue.
func PushAwaitableOnMain[R any](s *TaskSystem, fn any, args ...any) *Future[R] {
	t, fut := MakeAwaitable[R](fn, args...)
	s.PushOnMain(t)
	return fut
}

// dispatch spreads worker-targeted submissions over the ring of worker
// queues: a bounded window of non-blocking pushes starting at the next
// round-robin slot, then a blocking push as the forward-progress fallback.
func (s *TaskSystem) dispatch(t Task) {
	if s.workers == 0 {
		s.dispatchMain(t)
		return
	}

	idx := s.counter.Add(1)
	for k := 0; k < s.stealFactor*s.workers; k++ {
		if s.queues[s.workerQueueIndex(idx, k)].tryPush(t) {
			return
		}
	}
	s.queues[s.workerQueueIndex(idx, 0)].push(t)
}

func (s *TaskSystem) dispatchMain(t Task) {
	q := s.queues[mainQueueIndex]
	for k := 0; k < mainProbeAttempts; k++ {
		if q.tryPush(t) {
			return
		}
	}
	q.push(t)
}

// workerQueueIndex maps a dispatch counter or worker index plus a probe
// offset onto the worker-queue ring 1..N, excluding the main queue.
func (s *TaskSystem) workerQueueIndex(idx uint64, k int) int {
	return int((idx+uint64(k))%uint64(s.workers)) + 1
}

// run is the worker loop for the worker homed on queue idx: probe the ring
// for work, fall back to a blocking pop on the home queue, and exit once
// that reports done and empty.
func (s *TaskSystem) run(idx int) {
	s.runningWorkers.Add(1)
	defer func() {
		s.runningWorkers.Add(-1)
		s.workerWaitGroup.Done()
	}()

	s.logger.Debug("worker started", "worker", idx)

	for {
		t, from, ok := s.probe(idx)
		if !ok {
			if t, ok = s.queues[idx].pop(); !ok {
				s.logger.Debug("worker exiting", "worker", idx)
				return
			}
			from = idx
		}
		if from != idx {
			s.stolenTasks.Add(1)
		}
		s.invoke(t)
	}
}

// probe walks the worker-queue ring with non-blocking pops, starting at the
// queue after idx and wrapping round to idx itself.
func (s *TaskSystem) probe(idx int) (Task, int, bool) {
	for k := 0; k < s.stealFactor*s.workers; k++ {
		qi := s.workerQueueIndex(uint64(idx), k)
		if t, ok := s.queues[qi].tryPop(); ok {
			return t, qi, true
		}
	}
	return Task{}, 0, false
}

// invoke runs a task, updates the counters and contains any failure; user
// errors never take a worker down.
func (s *TaskSystem) invoke(t Task) {
	if err := t.Invoke(); err != nil {
		s.failedTasks.Add(1)
		s.logger.Error("task failed", "error", err)
		return
	}
	s.successfulTasks.Add(1)
}
