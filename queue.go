package taskflow

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/lists/singlylinkedlist"
)

// taskQueue is a mutex-protected FIFO of tasks. The try variants never block
// on the mutex, and the blocking pop skips over tasks that are not ready in
// search of a runnable one.
type taskQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	tasks *singlylinkedlist.List
	done  atomic.Bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{
		tasks: singlylinkedlist.New(),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Size()
}

// setDone marks the queue as terminated and wakes every waiter. Idempotent;
// the flag never clears. The store happens under the mutex so a waiter
// cannot check the flag and then miss the broadcast.
func (q *taskQueue) setDone() {
	q.mu.Lock()
	q.done.Store(true)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// tryPush appends the task without blocking on the mutex. Returns false when
// the mutex is contended.
func (q *taskQueue) tryPush(t Task) bool {
	if !q.mu.TryLock() {
		return false
	}
	q.tasks.Add(t)
	q.mu.Unlock()
	q.cond.Signal()
	return true
}

func (q *taskQueue) push(t Task) {
	q.mu.Lock()
	q.tasks.Add(t)
	q.mu.Unlock()
	q.cond.Signal()
}

// tryPop removes the head without blocking on the mutex. Returns false when
// the mutex is contended or the queue is empty.
func (q *taskQueue) tryPop() (Task, bool) {
	if !q.mu.TryLock() {
		return Task{}, false
	}
	if q.tasks.Size() == 0 {
		q.mu.Unlock()
		return Task{}, false
	}
	t := q.removeAt(0)
	q.mu.Unlock()
	return t, true
}

// pop blocks until a task or termination is available. On a done and empty
// queue it returns (Task{}, false). Otherwise it runs the ready-skipping
// scan: unready tasks rotate onto the tail until a ready one surfaces, and
// if the whole snapshot is unready the head is taken anyway and waited on
// outside the critical section.
func (q *taskQueue) pop() (Task, bool) {
	q.mu.Lock()
	for q.tasks.Size() == 0 && !q.done.Load() {
		q.cond.Wait()
	}
	if q.tasks.Size() == 0 {
		q.mu.Unlock()
		return Task{}, false
	}

	for n := q.tasks.Size(); n > 0; n-- {
		head := q.peekHead()
		if head.Ready() {
			q.tasks.Remove(0)
			q.mu.Unlock()
			return head, true
		}
		q.tasks.Remove(0)
		q.tasks.Add(head)
	}

	// Nothing in the snapshot was ready. The best we can do is take the
	// current head, release the lock and yield until it becomes runnable.
	t := q.removeAt(0)
	q.mu.Unlock()
	for !t.Ready() {
		runtime.Gosched()
	}
	return t, true
}

func (q *taskQueue) peekHead() Task {
	v, _ := q.tasks.Get(0)
	return v.(Task)
}

func (q *taskQueue) removeAt(i int) Task {
	v, _ := q.tasks.Get(i)
	q.tasks.Remove(i)
	return v.(Task)
}
