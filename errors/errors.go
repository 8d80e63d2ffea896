package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type returned by the simulator packages.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates the condition may clear on a later tick.
	Retryable bool `json:"retryable"`
	// Fatal indicates a caller defect that must abort the operation.
	Fatal bool `json:"fatal"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError classified by its code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
		Fatal:     IsFatalCode(code),
	}
}

// --- Workflow constructors ---

// Sealed reports a mutation attempted after the workflow was sealed.
func Sealed(workflow, op string) *AppError {
	return New(ErrCodeSealed, fmt.Sprintf("cannot %s: workflow %q is sealed", op, workflow)).
		WithDetails(map[string]any{"workflow": workflow, "operation": op})
}

// DuplicateFunction reports a function id that already exists in a workflow.
func DuplicateFunction(workflow, id string) *AppError {
	return New(ErrCodeDuplicateFunction, fmt.Sprintf("function %q already exists in workflow %q", id, workflow)).
		WithDetails(map[string]any{"workflow": workflow, "function": id})
}

// CycleDetected reports a dependency graph that is not acyclic.
func CycleDetected(processed, total int) *AppError {
	return New(ErrCodeCycleDetected, fmt.Sprintf("dependency graph is not acyclic: ordered %d of %d nodes", processed, total)).
		WithDetails(map[string]any{"processed": processed, "total": total})
}

// GraphMismatch reports a graph whose node set differs from the function set.
func GraphMismatch(workflow string, missing, extra []string) *AppError {
	return New(ErrCodeGraphMismatch, fmt.Sprintf("workflow %q: every function must be present in the graph", workflow)).
		WithDetails(map[string]any{"workflow": workflow, "missing": missing, "extra": extra})
}

// InvalidFunction reports a malformed function definition.
func InvalidFunction(id, reason string) *AppError {
	return New(ErrCodeInvalidFunction, fmt.Sprintf("function %q: %s", id, reason)).
		WithDetail("function", id)
}

// --- Common constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason)).WithDetails(details)
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// NotFound creates a new AppError for an item that was not found.
func NotFound(kind, id string) *AppError {
	details := map[string]any{"kind": kind}
	if id != "" {
		details["id"] = id
	}
	return New(ErrCodeNotFound, fmt.Sprintf("%s %q not found", kind, id)).WithDetails(details)
}

// --- Request outcome constructors ---

// NotLoaded creates a retryable AppError for a function that is not loaded on
// the executor's resource.
func NotLoaded(function string) *AppError {
	return New(ErrCodeNotLoaded, fmt.Sprintf("function %q is not loaded", function)).
		WithDetail("function", function)
}

// DeadlineMissed reports a request that was still queued after its deadline.
func DeadlineMissed(requestID string, deadline, now int64) *AppError {
	return New(ErrCodeDeadlineMissed, fmt.Sprintf("request %q missed its deadline %d at tick %d", requestID, deadline, now)).
		WithDetails(map[string]any{"request_id": requestID, "deadline": deadline, "tick": now})
}

// UnknownVariant reports a function with no cost for variant on resource.
func UnknownVariant(function, variant string) *AppError {
	return New(ErrCodeUnknownVariant, fmt.Sprintf("function %q has no cost for variant %q", function, variant)).
		WithDetails(map[string]any{"function": function, "variant": variant})
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "an unexpected error occurred").WithCause(cause)
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is an AppError whose condition may clear
// on a later tick.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// IsFatal reports whether err is a structural error that must abort the caller.
func IsFatal(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Fatal
}
