package sandbox

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a run failure so callers can tell slow code from
// broken code from a broken host.
type ErrorKind string

const (
	ErrorCompile  ErrorKind = "compile_error"
	ErrorRuntime  ErrorKind = "runtime_error"
	ErrorTimeout  ErrorKind = "timeout"
	ErrorResource ErrorKind = "resource_error"
	ErrorBridge   ErrorKind = "bridge_install_error"
)

// RunError is a classified run failure. It never escapes Service.Run; it is
// flattened into Result.Error/Result.ErrorKind.
type RunError struct {
	Kind    ErrorKind
	Message string
}

func (e *RunError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func compileError(err error) *RunError {
	return &RunError{Kind: ErrorCompile, Message: err.Error()}
}

func runtimeError(format string, args ...any) *RunError {
	return &RunError{Kind: ErrorRuntime, Message: fmt.Sprintf(format, args...)}
}

func timeoutError(message string) *RunError {
	return &RunError{Kind: ErrorTimeout, Message: message}
}

func resourceError(format string, args ...any) *RunError {
	return &RunError{Kind: ErrorResource, Message: fmt.Sprintf(format, args...)}
}

func bridgeError(format string, args ...any) *RunError {
	return &RunError{Kind: ErrorBridge, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrDisposed is returned when an operation touches a runner after teardown.
	ErrDisposed = errors.New("runner already disposed")

	// ErrLimiterClosed is returned when acquiring a slot from a closed limiter.
	ErrLimiterClosed = errors.New("run limiter is closed")
)
