package session

import (
	"context"
	"sync"

	"github.com/jmgilman/go/xfer/logging"
)

// WorkFunc is the body of a bulk operation.
type WorkFunc func(s *Session) error

// DoneFunc receives the terminal result of a bulk operation.
type DoneFunc func(err error)

// Runner runs bulk operations one at a time, each on its own worker
// goroutine. The zero value is ready to use.
type Runner struct {
	mu      sync.Mutex
	retired chan struct{}
	current *Session
	logger  *logging.Logger
}

// NewRunner creates a runner that logs operation start and finish.
func NewRunner(logger *logging.Logger) *Runner {
	return &Runner{logger: logger}
}

// Launch waits for the previous worker to retire, then starts work on a new
// worker goroutine inside a fresh session. done runs on the worker with the
// result of work; the session is finished once done returns.
func (r *Runner) Launch(ctx context.Context, title string, work WorkFunc, done DoneFunc, opts ...Option) *Session {
	r.mu.Lock()
	prev := r.retired
	retired := make(chan struct{})
	r.retired = retired
	r.mu.Unlock()

	if prev != nil {
		<-prev
	}

	return r.start(ctx, title, work, done, retired, opts)
}

func (r *Runner) start(ctx context.Context, title string, work WorkFunc, done DoneFunc, retired chan struct{}, opts []Option) *Session {
	logger := logging.OrNop(r.logger)
	if r.logger != nil {
		opts = append([]Option{WithLogger(r.logger)}, opts...)
	}
	s := New(ctx, title, opts...)

	r.mu.Lock()
	r.current = s
	r.mu.Unlock()

	go func() {
		defer close(retired)
		defer s.cancel()

		logger.Info(s.ctx, "operation started", "title", title)
		err := work(s)
		if err != nil {
			logger.Warn(s.ctx, "operation failed", "title", title, "error", err)
		} else {
			logger.Info(s.ctx, "operation finished", "title", title)
		}

		if done != nil {
			done(err)
		}
	}()

	return s
}

// Wait blocks until the current worker has retired.
func (r *Runner) Wait() {
	r.mu.Lock()
	retired := r.retired
	r.mu.Unlock()

	if retired != nil {
		<-retired
	}
}

// Busy reports whether an operation is in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retired != nil && !isClosed(r.retired)
}

// Current returns the session of the most recently launched operation, or
// nil if nothing has been launched.
func (r *Runner) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
