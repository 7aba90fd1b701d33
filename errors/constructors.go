package errors

import "fmt"

// New creates a TransferError with the given code and message.
//
// Example:
//
//	err := errors.New(errors.CodeNameConflict, "no free archive name")
func New(code ErrorCode, message string) TransferError {
	return &transferError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a TransferError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) TransferError {
	return New(code, fmt.Sprintf(format, args...))
}
