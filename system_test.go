package taskflow

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyChain(t *testing.T) {
	s := New(WithWorkers(2))
	defer s.Close()

	f1 := PushReady[int](s, func() int { return 1 })
	f2 := PushAwaitable[int](s, func(x int) int { return x + 1 }, f1)

	v, err := f2.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFailurePropagation(t *testing.T) {
	sampleErr := errors.New("sample error")

	s := New(WithWorkers(2))
	defer s.Close()

	f1 := PushReady[int](s, func() int { panic(sampleErr) })

	_, err := f1.Get()
	assert.ErrorIs(t, err, ErrPanic)
	assert.ErrorIs(t, err, sampleErr)

	f2 := PushAwaitable[int](s, func(x int) int { return x }, f1)

	_, err = f2.Get()
	assert.ErrorIs(t, err, ErrDependency)
	assert.ErrorIs(t, err, sampleErr)
}

func TestShutdownJoinsIdleWorkers(t *testing.T) {
	s := New(WithWorkers(4))

	require.NoError(t, s.Close())
	assert.EqualValues(t, 0, s.RunningWorkers())
}

func TestMainThreadRouting(t *testing.T) {
	s := New(WithWorkers(2))
	defer s.Close()

	var flag atomic.Bool
	fut := PushReadyOnMain[struct{}](s, func() { flag.Store(true) })

	// Workers never probe the main queue.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, flag.Load())

	s.RunOnMain()

	require.True(t, fut.Ready())
	assert.True(t, flag.Load())
}

func TestFanOut(t *testing.T) {
	s := New(WithWorkers(4))
	defer s.Close()

	count := 10 * s.Workers()
	futs := make([]*Future[struct{}], 0, count)
	for i := 0; i < count; i++ {
		futs = append(futs, PushReady[struct{}](s, func() {}))
	}

	for _, fut := range futs {
		require.NoError(t, fut.Wait())
	}
}

func TestZeroWorkersRoutesToMain(t *testing.T) {
	s := New(WithWorkers(0))
	defer s.Close()

	assert.EqualValues(t, 0, s.RunningWorkers())

	f1 := PushReady[int](s, func() int { return 1 })
	f2 := PushAwaitable[int](s, func(x int) int { return x + 1 }, f1)

	s.RunOnMain()
	s.RunOnMain()

	v, err := f2.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestDoneIsIdempotent(t *testing.T) {
	s := New(WithWorkers(2))

	s.Done()
	s.Done()

	require.NoError(t, s.Close())
}

func TestSubmitAfterDone(t *testing.T) {
	s := New(WithWorkers(1))
	s.Done()
	require.NoError(t, s.Close())

	// Implementation-defined but must not corrupt state: the task may be
	// enqueued and never run, so its future must not be relied upon.
	fut := PushReady[int](s, func() int { return 1 })

	time.Sleep(20 * time.Millisecond)
	assert.False(t, fut.Ready())
}

func TestDependencyBypass(t *testing.T) {
	s := New(WithWorkers(1))

	dep, resolveDep := NewFuture[int]()
	taskA, futA := MakeAwaitable[int](func(x int) int { return x }, dep)
	taskB, futB := MakeReady[int](func() int { return 7 })

	// Seed both tasks in one critical section so the worker's blocking pop
	// observes the pair at once and the scan has a bypass to perform.
	// Give the worker time to finish probing and block on its home queue
	// first.
	time.Sleep(100 * time.Millisecond)
	q := s.queues[1]
	q.mu.Lock()
	q.tasks.Add(taskA)
	q.tasks.Add(taskB)
	q.mu.Unlock()
	q.cond.Signal()

	v, err := futB.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.False(t, futA.Ready())

	resolveDep(41, nil)

	v, err = futA.Get()
	require.NoError(t, err)
	assert.Equal(t, 41, v)

	require.NoError(t, s.Close())
}

func TestStatsCounters(t *testing.T) {
	s := New(WithWorkers(2))

	var futs []*Future[int]
	for i := 0; i < 5; i++ {
		futs = append(futs, PushReady[int](s, func() int { return 1 }))
	}
	failed := PushReady[int](s, func() int { panic("boom") })

	for _, fut := range futs {
		require.NoError(t, fut.Wait())
	}
	assert.Error(t, failed.Wait())

	require.NoError(t, s.Close())

	assert.EqualValues(t, 6, s.SubmittedTasks())
	assert.EqualValues(t, 6, s.CompletedTasks())
	assert.EqualValues(t, 5, s.SuccessfulTasks())
	assert.EqualValues(t, 1, s.FailedTasks())
	assert.Equal(t, 0, s.WaitingTasks())
}

func TestPushTaskDirectly(t *testing.T) {
	s := New(WithWorkers(2))
	defer s.Close()

	task, fut := MakeAwaitable[int](func(x int) int { return x * 2 }, 21)
	s.Push(task)

	v, err := fut.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPushEmptyTaskPanics(t *testing.T) {
	s := New(WithWorkers(0))
	defer s.Close()

	assert.PanicsWithValue(t, ErrBadTaskAccess, func() {
		s.Push(Task{})
	})
	assert.PanicsWithValue(t, ErrBadTaskAccess, func() {
		s.PushOnMain(Task{})
	})
}

func TestRunOnMainReturnsOnDoneQueue(t *testing.T) {
	s := New(WithWorkers(0))
	s.Done()

	// Must not block on a done and empty queue.
	done := make(chan struct{})
	go func() {
		s.RunOnMain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunOnMain blocked on a done queue")
	}

	require.NoError(t, s.Close())
}
