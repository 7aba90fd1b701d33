// Package session provides the cooperative execution context every bulk
// operation runs in.
//
// A Session carries the cancellation signal, the labels shown to the user and
// the byte-level progress of the current transfer. Workers call Yield and
// ShouldExit at safe points; the UI side calls Cancel and polls Status.
package session

import (
	"context"
	"runtime"
	"sync"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/logging"
)

// ProgressFunc receives byte progress for the current transfer.
type ProgressFunc func(done, total int64)

// Status is a point-in-time view of a session for display.
type Status struct {
	Title     string
	Transfer  string
	Done      int64
	Total     int64
	Cancelled bool
}

// Option configures a Session.
type Option func(*Session)

// WithProgress registers fn to receive every OnProgress call.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Session) {
		s.progress = fn
	}
}

// WithLogger sets the logger used for transfer labels.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is the execution context of one bulk operation.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	title    string
	transfer string
	done     int64
	total    int64

	progress ProgressFunc
	logger   *logging.Logger
}

// New creates a session derived from ctx. Cancelling ctx cancels the
// session.
func New(ctx context.Context, title string, opts ...Option) *Session {
	cctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ctx:    cctx,
		cancel: cancel,
		title:  title,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Context returns the session's context. It is done once the session is
// cancelled.
func (s *Session) Context() context.Context {
	return s.ctx
}

// SetTitle replaces the headline label, usually the entry being processed.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
}

// NewTransfer starts a new sub-transfer and resets byte progress.
func (s *Session) NewTransfer(label string) {
	s.mu.Lock()
	s.transfer = label
	s.done = 0
	s.total = 0
	s.mu.Unlock()

	s.logger.Debug(s.ctx, "transfer", "label", label)
}

// OnProgress records byte progress of the current transfer and forwards it
// to the registered ProgressFunc.
func (s *Session) OnProgress(done, total int64) {
	s.mu.Lock()
	s.done = done
	s.total = total
	fn := s.progress
	s.mu.Unlock()

	if fn != nil {
		fn(done, total)
	}
}

// Yield gives other goroutines a chance to run. Workers call it at every
// safe point before checking ShouldExit.
func (s *Session) Yield() {
	runtime.Gosched()
}

// ShouldExit reports whether cancellation has been requested.
func (s *Session) ShouldExit() bool {
	return s.ctx.Err() != nil
}

// Err returns a CodeCancelled error once cancellation has been requested,
// and nil otherwise.
func (s *Session) Err() error {
	if err := s.ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeCancelled, "operation cancelled")
	}
	return nil
}

// Cancel requests cancellation. It is safe to call from any goroutine and
// more than once.
func (s *Session) Cancel() {
	s.cancel()
}

// Status returns the current labels and progress.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Title:     s.title,
		Transfer:  s.transfer,
		Done:      s.done,
		Total:     s.total,
		Cancelled: s.ctx.Err() != nil,
	}
}
