package hook

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents the type of lifecycle error.
type ErrorCode string

const (
	// ErrCodeState indicates a transition was requested in the wrong state.
	ErrCodeState ErrorCode = "STATE_ERROR"
	// ErrCodeRegister indicates a hook factory failed.
	ErrCodeRegister ErrorCode = "REGISTER_ERROR"
	// ErrCodeTimeout indicates a hook call exceeded hooks.timeout.
	ErrCodeTimeout ErrorCode = "TIMEOUT_ERROR"
	// ErrCodePanic indicates a hook call panicked.
	ErrCodePanic ErrorCode = "PANIC_ERROR"
)

var (
	// ErrAlreadyInitialized is matched by state errors from InitHooks.
	ErrAlreadyInitialized = errors.New("hooks already initialized")
	// ErrNotInitialized is matched by state errors from KillHooks, ResetHooks and PublicInfo.
	ErrNotInitialized = errors.New("hooks not initialized")
)

// LifecycleError is raised by the orchestrator itself. Errors returned by hooks
// are passed through unchanged and never wrapped in a LifecycleError.
type LifecycleError struct {
	Code    ErrorCode
	Hook    string
	Phase   Phase
	State   State
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Code)
	if e.Hook != "" {
		prefix = fmt.Sprintf("[%s %s/%s]", e.Code, e.Hook, e.Phase)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error.
func (e *LifecycleError) Unwrap() error {
	return e.Cause
}

// NewStateError creates an error for a transition requested in the wrong state.
func NewStateError(op Phase, state State, cause error) *LifecycleError {
	return &LifecycleError{
		Code:    ErrCodeState,
		Phase:   op,
		State:   state,
		Message: fmt.Sprintf("cannot %s while %s", op, state),
		Cause:   cause,
	}
}

// NewRegisterError creates an error for a failed hook factory.
func NewRegisterError(name string, cause error) *LifecycleError {
	return &LifecycleError{
		Code:    ErrCodeRegister,
		Hook:    name,
		Phase:   PhaseRegister,
		Message: "hook factory failed",
		Cause:   cause,
	}
}

// NewTimeoutError creates an error for a hook call that did not return in time.
func NewTimeoutError(name string, phase Phase, timeout time.Duration, cause error) *LifecycleError {
	return &LifecycleError{
		Code:    ErrCodeTimeout,
		Hook:    name,
		Phase:   phase,
		Message: fmt.Sprintf("hook call timed out after %v", timeout),
		Cause:   cause,
	}
}

// NewPanicError creates an error for a hook call that panicked.
func NewPanicError(name string, phase Phase, recovered any) *LifecycleError {
	return &LifecycleError{
		Code:    ErrCodePanic,
		Hook:    name,
		Phase:   phase,
		Message: fmt.Sprintf("hook panicked: %v", recovered),
	}
}

func hasCode(err error, code ErrorCode) bool {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// IsStateError checks if the error is a state precondition violation.
func IsStateError(err error) bool {
	return hasCode(err, ErrCodeState)
}

// IsRegisterError checks if the error comes from a failed hook factory.
func IsRegisterError(err error) bool {
	return hasCode(err, ErrCodeRegister)
}

// IsTimeoutError checks if the error is a hook call timeout.
func IsTimeoutError(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsPanicError checks if the error is a recovered hook panic.
func IsPanicError(err error) bool {
	return hasCode(err, ErrCodePanic)
}
