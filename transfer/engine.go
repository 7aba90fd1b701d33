// Package transfer implements the bulk filesystem operations: delete, paste
// (copy and move), zip, unzip, upload and hashing.
//
// Every operation reads its selection from a stash.Stash, captures directory
// snapshots before mutating anything and runs inside a session.Session that
// it polls for cancellation at each entry and each copied chunk. Errors are
// fail-fast: the first failing step aborts the operation and nothing already
// done is rolled back.
package transfer

import (
	"strings"
	"time"

	"github.com/jmgilman/go/xfer/archive"
	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/logging"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
)

// Defaults for Engine options.
const (
	DefaultChunkSize            = 1 << 20
	DefaultDeleteThrottle       = 100 * time.Microsecond
	DefaultMultiThreadThreshold = 4 << 20
	DefaultWorkers              = 4
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithChunkSize sets the streaming copy buffer size.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithDeleteThrottle sets the pause after each delete on native storage.
// Zero disables it.
func WithDeleteThrottle(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.deleteThrottle = d
		}
	}
}

// WithMultiThreadThreshold sets the file size from which zip and unzip
// stream through separate reader and writer workers.
func WithMultiThreadThreshold(n int64) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.multiThreadThreshold = n
		}
	}
}

// WithWorkers sets how many chunks the multi-worker copy keeps in flight.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithExtractOptions sets the limits Unzip enforces.
func WithExtractOptions(opts archive.ExtractOptions) Option {
	return func(e *Engine) {
		e.extract = opts
	}
}

// Engine runs bulk operations. It holds configuration only and is safe to
// share, but the operations themselves are meant to run one at a time.
type Engine struct {
	logger               *logging.Logger
	chunkSize            int
	deleteThrottle       time.Duration
	multiThreadThreshold int64
	workers              int
	extract              archive.ExtractOptions
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		chunkSize:            DefaultChunkSize,
		deleteThrottle:       DefaultDeleteThrottle,
		multiThreadThreshold: DefaultMultiThreadThreshold,
		workers:              DefaultWorkers,
		extract:              archive.DefaultExtractOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrNop(e.logger)
	return e
}

// tally counts what an operation processed.
type tally struct {
	files int
	bytes int64
}

// run executes fn as operation op, recording metrics and a summary log line.
func (e *Engine) run(s *session.Session, op string, fn func(t *tally) error) error {
	if s == nil {
		return errors.New(errors.CodeInvalidInput, "a session is required")
	}

	start := time.Now()
	var t tally
	err := fn(&t)
	duration := time.Since(start)

	status := metrics.StatusSuccess
	switch {
	case errors.IsCancelled(err):
		status = metrics.StatusCancelled
	case err != nil:
		status = metrics.StatusError
	}
	metrics.RecordOperation(op, status, duration)
	logging.LogOperation(s.Context(), e.logger, op, duration, t.files, t.bytes, err)

	return err
}

// checkpoint is the safe point between two steps.
func checkpoint(s *session.Session) error {
	s.Yield()
	return s.Err()
}

// backendErr wraps a failed backend request. Read-only, unsupported and
// already-exists refusals keep their own codes.
func backendErr(err error, message, path string) error {
	return errors.WrapWithContext(err, backendCode(err), message, map[string]interface{}{"path": path})
}

func backendCode(err error) errors.ErrorCode {
	switch {
	case errors.Is(err, core.ErrReadOnly):
		return errors.CodeReadOnly
	case errors.Is(err, core.ErrUnsupported):
		return errors.CodeUnsupported
	case errors.Is(err, core.ErrExist):
		return errors.CodeAlreadyExists
	default:
		return errors.CodeBackend
	}
}

// passOrWrap keeps errors that already carry a code and wraps the rest as
// backend failures.
func passOrWrap(err error, message, path string) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != errors.CodeUnknown {
		return err
	}
	return backendErr(err, message, path)
}

// isRemovable reports whether b is slow external storage. Removable media
// never gets the multi-worker copy.
func isRemovable(b core.Backend) bool {
	return b.Kind() == core.KindRemovable || strings.HasPrefix(b.Root(), "ums")
}
