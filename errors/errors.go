package errors

// TransferError extends the standard error interface with a code, a retry
// classification and context metadata.
type TransferError interface {
	error

	// Code returns the error code identifying the failure kind.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable message without the cause.
	Message() string

	// Context returns a copy of the attached metadata, or nil when empty.
	Context() map[string]interface{}

	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}
