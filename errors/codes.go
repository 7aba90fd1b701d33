package errors

// ErrorCode identifies a failure kind. Codes are strings so they read well in
// logs and CLI output.
type ErrorCode string

const (
	// Transfer errors.

	// CodeBackend indicates a backend refused an open, list, create, delete or
	// rename request.
	CodeBackend ErrorCode = "BACKEND_ERROR"

	// CodeIO indicates a read or write failed mid-copy.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeArchive indicates the archive codec failed to open a file or create
	// an entry.
	CodeArchive ErrorCode = "ARCHIVE_ERROR"

	// CodeCancelled indicates the operation observed a cancellation request.
	CodeCancelled ErrorCode = "CANCELLED"

	// CodeNameConflict indicates a destination name could not be chosen.
	CodeNameConflict ErrorCode = "NAME_CONFLICT"

	// Resource errors.

	// CodeNotFound indicates a path or resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the resource already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeReadOnly indicates a mutation was attempted on a read-only backend.
	CodeReadOnly ErrorCode = "READ_ONLY"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates the configuration is invalid.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeNetwork indicates a network request failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// System errors.

	// CodeUnsupported indicates the backend lacks the requested capability.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// CodeInternal indicates an internal invariant was broken.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)
