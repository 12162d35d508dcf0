package subscription

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies a signup pipeline failure by origin, which is what
// the HTTP boundary needs: the caller's fault (validation), our storage, or
// the email provider.
type FailureKind string

const (
	FailureValidation FailureKind = "validation"
	FailureStorage    FailureKind = "storage"
	FailureDelivery   FailureKind = "delivery"
)

func (k FailureKind) String() string {
	return string(k)
}

// SignupError is the failure surface of the confirmation pipeline. Stage
// records which transition of the state machine failed; Err preserves the
// lower-level cause for diagnostics and errors.Is/As matching.
type SignupError struct {
	Kind  FailureKind
	Stage string
	Err   error
}

func (e *SignupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failure at %q", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s failure at %q: %v", e.Kind, e.Stage, e.Err)
}

func (e *SignupError) Unwrap() error {
	return e.Err
}

// Chain renders the full causal chain for log output, walking the wrapped
// errors explicitly instead of relying on a single flattened message.
func (e *SignupError) Chain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failure at %q", e.Kind, e.Stage)
	for cause := e.Err; cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "\n\tcaused by: %v", cause)
	}
	return b.String()
}

// NewSignupError wraps cause as a pipeline failure of the given kind.
func NewSignupError(kind FailureKind, stage string, cause error) *SignupError {
	return &SignupError{Kind: kind, Stage: stage, Err: cause}
}

// KindOf extracts the failure kind from err, or false if err is not a
// pipeline failure.
func KindOf(err error) (FailureKind, bool) {
	var se *SignupError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
