package message

import (
	"strings"
	"testing"

	"github.com/kbukum/ticksim/errors"
)

func TestCode_String(t *testing.T) {
	if Success.String() != "success" || Error.String() != "error" {
		t.Errorf("unexpected code strings: %s %s", Success, Error)
	}
	if Code(7).String() != "code(7)" {
		t.Errorf("unexpected unknown code string: %s", Code(7))
	}
}

func TestAction_Expired(t *testing.T) {
	a := Action{Function: "f", Deadline: 5}
	if a.Expired(5) {
		t.Error("deadline tick itself is still admissible")
	}
	if !a.Expired(6) {
		t.Error("expected expiry after deadline")
	}
	if (Action{Deadline: Never}).Expired(1 << 40) {
		t.Error("Never should not expire")
	}
}

func TestResult_Constructors(t *testing.T) {
	a := Action{Function: "infer", Variant: "1", RequestID: "r1", Deadline: 10}

	ok := Succeeded(a, 2, 7, "done")
	if !ok.OK() || ok.Reason != ReasonCompleted {
		t.Errorf("expected success/completed, got %+v", ok)
	}
	if ok.Latency() != 5 {
		t.Errorf("expected latency 5, got %d", ok.Latency())
	}
	if ok.Retryable() {
		t.Error("success is not retryable")
	}

	fail := Failed(ReasonDeadlineMissed, a, 2, 11, "late")
	if fail.OK() || fail.Retryable() {
		t.Errorf("deadline miss is a terminal error, got %+v", fail)
	}
	if !strings.Contains(fail.String(), "deadline_missed") {
		t.Errorf("expected reason in string, got %q", fail.String())
	}
}

func TestReason_Terminal(t *testing.T) {
	tests := []struct {
		reason   Reason
		terminal bool
	}{
		{ReasonCompleted, true},
		{ReasonUnknownFunction, true},
		{ReasonDeadlineMissed, true},
		{ReasonUnknownVariant, true},
		{ReasonNotLoaded, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.reason), func(t *testing.T) {
			if tc.reason.Terminal() != tc.terminal {
				t.Errorf("expected terminal=%v", tc.terminal)
			}
		})
	}

	r := Failed(ReasonNotLoaded, Action{}, 0, 0, "")
	if !r.Retryable() {
		t.Error("not-loaded errors are retried")
	}
}

func TestResult_Err(t *testing.T) {
	action := Action{Function: "resnet", Variant: "8", RequestID: "r1", Deadline: 4}
	tests := []struct {
		name      string
		result    Result
		code      errors.ErrorCode
		retryable bool
	}{
		{"unknown function", Failed(ReasonUnknownFunction, action, 0, 2, ""), errors.ErrCodeNotFound, false},
		{"deadline missed", Failed(ReasonDeadlineMissed, action, 0, 5, ""), errors.ErrCodeDeadlineMissed, false},
		{"not loaded", Failed(ReasonNotLoaded, action, 0, 1, ""), errors.ErrCodeNotLoaded, true},
		{"unknown variant", Failed(ReasonUnknownVariant, action, 0, 1, ""), errors.ErrCodeUnknownVariant, false},
		{"unexpected reason", Failed(Reason("lost"), action, 0, 1, ""), errors.ErrCodeInternal, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.result.Err()
			if !errors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if errors.IsRetryable(err) != tc.retryable || tc.result.Retryable() != tc.retryable {
				t.Errorf("expected retryable=%v", tc.retryable)
			}
			appErr, _ := errors.AsAppError(err)
			if appErr.Details["request_id"] != "r1" || appErr.Details["tick"] != int64(tc.result.Observed) {
				t.Errorf("expected request and tick details, got %v", appErr.Details)
			}
		})
	}

	if err := Succeeded(action, 0, 3, "").Err(); err != nil {
		t.Errorf("success has no error, got %v", err)
	}
}
