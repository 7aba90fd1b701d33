package errors

// ErrorClassification indicates whether re-running the failed operation may
// succeed.
type ErrorClassification string

const (
	// ClassificationRetryable marks transient failures such as network drops.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks failures that will repeat on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports whether c is ClassificationRetryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeNetwork: ClassificationRetryable,
	CodeTimeout: ClassificationRetryable,
}

// getDefaultClassification returns the classification for code. Anything not
// listed is permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
