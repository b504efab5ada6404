package taskflow

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/Y-Gwork/taskflow/internal/logging"
)

// defaultStealFactor scales the non-blocking probe windows used by
// submission and by idle workers: both walk the worker-queue ring up to
// stealFactor*N times before blocking. A policy constant, not a
// correctness requirement.
const defaultStealFactor = 10

// defaultWorkers leaves one CPU for the goroutine driving RunOnMain.
func defaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 0 {
		n = 0
	}
	return n
}

// defaultLogger discards everything; a library stays quiet unless the host
// hands it a logger.
func defaultLogger() *slog.Logger {
	return logging.NewLoggerWithWriter(slog.LevelError, "text", io.Discard)
}

// Option customizes a TaskSystem at construction.
type Option func(*TaskSystem)

// WithWorkers sets the number of worker goroutines. Zero is valid and
// routes every submission to the main queue.
func WithWorkers(workers int) Option {
	return func(s *TaskSystem) {
		s.workers = workers
	}
}

// WithStealFactor overrides the probe-window scale used by submission and
// by idle workers. Values below one fall back to the default.
func WithStealFactor(stealFactor int) Option {
	return func(s *TaskSystem) {
		s.stealFactor = stealFactor
	}
}

// WithLogger sets the logger used for worker lifecycle events and task
// failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *TaskSystem) {
		if logger != nil {
			s.logger = logger
		}
	}
}
