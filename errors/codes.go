package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Data errors
const (
	// ErrCodeMalformedRecord indicates a record whose NaN pattern or array
	// lengths do not match the expected trailing-voicing layout.
	ErrCodeMalformedRecord ErrorCode = "MALFORMED_RECORD"
	// ErrCodeEmptyBatch indicates a pool that could not fill a whole batch.
	ErrCodeEmptyBatch ErrorCode = "EMPTY_BATCH"
	// ErrCodeInvalidInput indicates arrays with unexpected shapes reached a stage.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Setup errors
const (
	// ErrCodeConfiguration indicates invalid options or statistics.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeNotFound indicates a missing split, object or artifact.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure, usually wrapping I/O.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// fatalCodes are raised at construction time and abort the run before any
// batch is produced.
var fatalCodes = map[ErrorCode]bool{
	ErrCodeConfiguration: true,
	ErrCodeNotFound:      true,
}

// IsSetupCode returns true if the code is reported while building a stream
// rather than while iterating it.
func IsSetupCode(code ErrorCode) bool {
	return fatalCodes[code]
}
