package message

import (
	"fmt"
	"math"

	"github.com/kbukum/ticksim/errors"
)

// Tick is one unit of logical simulation time.
type Tick int64

// Never is a deadline that is never missed.
const Never Tick = math.MaxInt64

// Code is the coarse outcome of a request.
type Code int

const (
	Success Code = iota
	Error
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Reason explains why a Result carries its Code.
type Reason string

const (
	ReasonCompleted       Reason = "completed"
	ReasonUnknownFunction Reason = "unknown_function"
	ReasonDeadlineMissed  Reason = "deadline_missed"
	ReasonNotLoaded       Reason = "not_loaded"
	ReasonUnknownVariant  Reason = "unknown_variant"
)

var reasonCodes = map[Reason]errors.ErrorCode{
	ReasonUnknownFunction: errors.ErrCodeNotFound,
	ReasonDeadlineMissed:  errors.ErrCodeDeadlineMissed,
	ReasonNotLoaded:       errors.ErrCodeNotLoaded,
	ReasonUnknownVariant:  errors.ErrCodeUnknownVariant,
}

// ErrorCode returns the AppError code an Error result with this reason maps
// to, or false for ReasonCompleted and unknown reasons.
func (r Reason) ErrorCode() (errors.ErrorCode, bool) {
	code, ok := reasonCodes[r]
	return code, ok
}

// Terminal reports whether a request with this reason is finished for good.
func (r Reason) Terminal() bool {
	code, ok := r.ErrorCode()
	return !ok || !errors.IsRetryableCode(code)
}

// Action requests execution of Function at Variant no later than Deadline.
type Action struct {
	Function  string `json:"function" yaml:"function"`
	Variant   string `json:"variant" yaml:"variant"`
	RequestID string `json:"request_id" yaml:"request_id"`
	// Deadline is the last tick at which the request may still be admitted.
	Deadline Tick `json:"deadline" yaml:"deadline"`
}

// Expired reports whether the action can no longer be admitted at now.
func (a Action) Expired(now Tick) bool {
	return now > a.Deadline
}

// Result is an immutable outcome produced by an executor.
type Result struct {
	Code     Code   `json:"code"`
	Reason   Reason `json:"reason"`
	Action   Action `json:"action"`
	Received Tick   `json:"received"`
	Observed Tick   `json:"observed"`
	Message  string `json:"message"`
}

// Succeeded builds a Success result for a completed action.
func Succeeded(action Action, received, observed Tick, msg string) Result {
	return Result{
		Code:     Success,
		Reason:   ReasonCompleted,
		Action:   action,
		Received: received,
		Observed: observed,
		Message:  msg,
	}
}

// Failed builds an Error result.
func Failed(reason Reason, action Action, received, observed Tick, msg string) Result {
	return Result{
		Code:     Error,
		Reason:   reason,
		Action:   action,
		Received: received,
		Observed: observed,
		Message:  msg,
	}
}

// OK reports whether the result is a Success.
func (r Result) OK() bool { return r.Code == Success }

// Retryable reports whether the request stays queued after this result.
func (r Result) Retryable() bool {
	return errors.IsRetryable(r.Err())
}

// Err returns nil for a Success, otherwise the AppError matching the reason,
// carrying the request, the observation tick and the executor's message.
func (r Result) Err() error {
	if r.Code == Success {
		return nil
	}
	var err *errors.AppError
	switch r.Reason {
	case ReasonUnknownFunction:
		err = errors.NotFound("function", r.Action.Function)
	case ReasonDeadlineMissed:
		err = errors.DeadlineMissed(r.Action.RequestID, int64(r.Action.Deadline), int64(r.Observed))
	case ReasonNotLoaded:
		err = errors.NotLoaded(r.Action.Function)
	case ReasonUnknownVariant:
		err = errors.UnknownVariant(r.Action.Function, r.Action.Variant)
	default:
		err = errors.New(errors.ErrCodeInternal, fmt.Sprintf("unexpected result reason %q", r.Reason))
	}
	return err.WithDetails(map[string]any{
		"request_id": r.Action.RequestID,
		"tick":       int64(r.Observed),
		"message":    r.Message,
	})
}

// Latency is the number of ticks between receipt and observation.
func (r Result) Latency() Tick {
	return r.Observed - r.Received
}

func (r Result) String() string {
	return fmt.Sprintf("%s[%s] %s@%d: %s", r.Code, r.Reason, r.Action.RequestID, r.Observed, r.Message)
}
