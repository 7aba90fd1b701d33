package errors

import "errors"

// WithContext returns a copy of err with key set to value. A plain error is
// first converted to a CodeUnknown TransferError.
//
// Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "path", "sdmc:/switch/a.nro")
func WithContext(err error, key string, value interface{}) TransferError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap returns a copy of err with ctx merged into its context. New
// keys override existing ones.
//
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]interface{}) TransferError {
	if err == nil {
		return nil
	}

	te := asTransferError(err)
	merged := make(map[string]interface{}, len(ctx))
	for k, v := range te.Context() {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}

	return &transferError{
		code:           te.Code(),
		classification: te.Classification(),
		message:        te.Message(),
		context:        merged,
		cause:          te.Unwrap(),
	}
}

// WithClassification returns a copy of err with its classification replaced.
//
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) TransferError {
	if err == nil {
		return nil
	}

	te := asTransferError(err)
	return &transferError{
		code:           te.Code(),
		classification: classification,
		message:        te.Message(),
		context:        te.Context(),
		cause:          te.Unwrap(),
	}
}

// asTransferError returns the first TransferError in err's chain, or converts
// err into a CodeUnknown one.
func asTransferError(err error) TransferError {
	var te TransferError
	if errors.As(err, &te) {
		return te
	}
	return &transferError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
