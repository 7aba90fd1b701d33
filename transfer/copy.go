package transfer

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
)

// copyMode selects how a stream is copied.
type copyMode int

const (
	// singleThreaded reads and writes on the calling goroutine.
	singleThreaded copyMode = iota
	// multiThreaded reads on one worker and writes on another, with up to
	// Engine.workers chunks in flight between them.
	multiThreaded
)

// modeFor picks the copy mode for a file of size bytes read from src and
// written to dst. Removable media on either side is always copied on the
// calling goroutine; elsewhere only files at or above the threshold get
// separate workers.
func (e *Engine) modeFor(src, dst core.Backend, size int64) copyMode {
	if isRemovable(src) || isRemovable(dst) {
		return singleThreaded
	}
	if size < 0 || size < e.multiThreadThreshold {
		return singleThreaded
	}
	return multiThreaded
}

// Copy copies the file at srcPath on src to dstPath on dst, truncating any
// existing destination file. When sameBackend is set and src implements
// core.Cloner the backend copies the file itself. Otherwise the file is
// streamed in chunks, reporting progress to s after each chunk and checking
// for cancellation between chunks.
//
// Open and create failures are CodeBackend errors; read and write failures
// are CodeIO errors.
func (e *Engine) Copy(s *session.Session, src, dst core.Backend, srcPath, dstPath string, sameBackend bool) error {
	_, err := e.copyFile(s, src, dst, srcPath, dstPath, sameBackend)
	return err
}

// copyFile is Copy returning the number of bytes streamed.
func (e *Engine) copyFile(s *session.Session, src, dst core.Backend, srcPath, dstPath string, sameBackend bool) (int64, error) {
	if sameBackend {
		if cl, ok := src.(core.Cloner); ok {
			err := cl.Clone(srcPath, dstPath)
			if err == nil {
				e.logger.Debug(s.Context(), "cloned file", "src", srcPath, "dst", dstPath)
				return 0, nil
			}
			if !errors.Is(err, core.ErrUnsupported) {
				return 0, backendErr(err, "failed to clone file", srcPath)
			}
		}
	}

	info, err := src.Stat(srcPath)
	if err != nil {
		return 0, backendErr(err, "failed to stat source file", srcPath)
	}

	in, err := src.Open(srcPath)
	if err != nil {
		return 0, backendErr(err, "failed to open source file", srcPath)
	}
	defer func() { _ = in.Close() }()

	out, err := dst.Create(dstPath)
	if err != nil {
		return 0, backendErr(err, "failed to create destination file", dstPath)
	}

	n, err := e.stream(s, out, in, info.Size, singleThreaded)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.WrapWithContext(cerr, errors.CodeIO, "failed to finish destination file",
			map[string]interface{}{"path": dstPath})
	}
	if err != nil {
		return n, err
	}

	e.logger.Debug(s.Context(), "copied file", "src", srcPath, "dst", dstPath, "bytes", n)
	return n, nil
}

// stream copies src to dst in chunks of e.chunkSize. total is only used for
// progress reporting and may be core.SizeUnknown.
func (e *Engine) stream(s *session.Session, dst io.Writer, src io.Reader, total int64, mode copyMode) (int64, error) {
	if mode == multiThreaded {
		return e.streamWorkers(s, dst, src, total)
	}

	buf := make([]byte, e.chunkSize)
	var done int64
	for {
		if err := s.Err(); err != nil {
			return done, err
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return done, errors.Wrap(werr, errors.CodeIO, "write failed")
			}
			done += int64(n)
			s.OnProgress(done, total)
			metrics.RecordBytesCopied(int64(n))
		}
		if rerr == io.EOF {
			return done, nil
		}
		if rerr != nil {
			return done, errors.Wrap(rerr, errors.CodeIO, "read failed")
		}
	}
}

// streamWorkers is stream with the reader and the writer on separate
// goroutines. Chunks are written strictly in the order they were read.
func (e *Engine) streamWorkers(s *session.Session, dst io.Writer, src io.Reader, total int64) (int64, error) {
	g, ctx := errgroup.WithContext(s.Context())

	chunks := make(chan []byte, e.workers)
	free := make(chan []byte, e.workers+1)
	for i := 0; i < e.workers+1; i++ {
		free <- make([]byte, e.chunkSize)
	}

	g.Go(func() error {
		defer close(chunks)
		for {
			var buf []byte
			select {
			case <-ctx.Done():
				return ctx.Err()
			case buf = <-free:
			}

			n, err := src.Read(buf[:cap(buf)])
			if n > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case chunks <- buf[:n]:
				}
			} else {
				free <- buf
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, errors.CodeIO, "read failed")
			}
		}
	})

	var done int64
	g.Go(func() error {
		for chunk := range chunks {
			if err := s.Err(); err != nil {
				return err
			}
			if _, err := dst.Write(chunk); err != nil {
				return errors.Wrap(err, errors.CodeIO, "write failed")
			}
			done += int64(len(chunk))
			s.OnProgress(done, total)
			metrics.RecordBytesCopied(int64(len(chunk)))
			free <- chunk
		}
		return nil
	})

	err := g.Wait()
	if s.ShouldExit() {
		return done, s.Err()
	}
	if err != nil && errors.Is(err, context.Canceled) {
		return done, errors.Wrap(err, errors.CodeCancelled, "operation cancelled")
	}
	return done, err
}
