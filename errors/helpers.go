package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode returns the code of the outermost TransferError in err's chain.
// Returns CodeUnknown if err is nil or carries no code.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var te TransferError
	if stderrors.As(err, &te) {
		return te.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any TransferError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if te, ok := err.(TransferError); ok && te.Code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetClassification returns the classification of the outermost
// TransferError in err's chain. Defaults to ClassificationPermanent.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var te TransferError
	if stderrors.As(err, &te) {
		return te.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable reports whether err is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}

// IsCancelled reports whether err records a cooperative cancellation.
func IsCancelled(err error) bool {
	return HasCode(err, CodeCancelled)
}
