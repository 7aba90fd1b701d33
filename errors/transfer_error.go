package errors

import "fmt"

// transferError is the only TransferError implementation. It is immutable
// once built; every helper returns a fresh value.
type transferError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error formats the error as "[CODE] message" or "[CODE] message: cause".
func (e *transferError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *transferError) Code() ErrorCode {
	return e.code
}

func (e *transferError) Classification() ErrorClassification {
	return e.classification
}

func (e *transferError) Message() string {
	return e.message
}

func (e *transferError) Context() map[string]interface{} {
	return copyContext(e.context)
}

func (e *transferError) Unwrap() error {
	return e.cause
}

// copyContext returns a shallow copy of ctx, or nil when ctx is empty.
func copyContext(ctx map[string]interface{}) map[string]interface{} {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
