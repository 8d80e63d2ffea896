package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Workflow structure errors (fatal)
const (
	// ErrCodeSealed indicates a mutation was attempted on a sealed workflow.
	ErrCodeSealed ErrorCode = "SEALED"
	// ErrCodeDuplicateFunction indicates a function id is already present.
	ErrCodeDuplicateFunction ErrorCode = "DUPLICATE_FUNCTION"
	// ErrCodeCycleDetected indicates the dependency graph is not acyclic.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeGraphMismatch indicates the graph nodes differ from the function ids.
	ErrCodeGraphMismatch ErrorCode = "GRAPH_MISMATCH"
	// ErrCodeInvalidFunction indicates a malformed function or cost table.
	ErrCodeInvalidFunction ErrorCode = "INVALID_FUNCTION"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested item was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Simulation errors
const (
	// ErrCodeNotLoaded indicates a function is not loaded on a resource yet.
	ErrCodeNotLoaded ErrorCode = "NOT_LOADED"
	// ErrCodeDeadlineMissed indicates a request could not be admitted in time.
	ErrCodeDeadlineMissed ErrorCode = "DEADLINE_MISSED"
	// ErrCodeUnknownVariant indicates a function has no cost for the requested variant.
	ErrCodeUnknownVariant ErrorCode = "UNKNOWN_VARIANT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeNotLoaded: true,
	ErrCodeInternal:  false,
}

var fatalCodes = map[ErrorCode]bool{
	ErrCodeSealed:            true,
	ErrCodeDuplicateFunction: true,
	ErrCodeCycleDetected:     true,
	ErrCodeGraphMismatch:     true,
	ErrCodeInvalidFunction:   true,
	ErrCodeInternal:          true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsFatalCode returns true if the code signals a caller defect.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
