package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Wrap wraps err with a code and message. The classification of a wrapped
// TransferError is preserved. A cause that is a network timeout or an
// expired deadline is retryable whatever the code; otherwise the code's
// default is used.
//
// Returns nil if err is nil.
//
// Example:
//
//	if err := b.RemoveFile(p); err != nil {
//	    return errors.Wrap(err, errors.CodeBackend, "failed to delete file")
//	}
func Wrap(err error, code ErrorCode, message string) TransferError {
	return WrapWithContext(err, code, message, nil)
}

// Wrapf wraps err with a formatted message.
//
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) TransferError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches a copy of ctx in one step.
//
// Returns nil if err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) TransferError {
	if err == nil {
		return nil
	}

	classification := getDefaultClassification(code)
	var inner TransferError
	if errors.As(err, &inner) {
		classification = inner.Classification()
	} else if timedOut(err) {
		classification = ClassificationRetryable
	}

	return &transferError{
		code:           code,
		classification: classification,
		message:        message,
		context:        copyContext(ctx),
		cause:          err,
	}
}

func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
