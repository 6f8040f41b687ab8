package relay

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// ErrNamespaceNotFound is returned when a scan root cannot be resolved.
	ErrNamespaceNotFound = errors.New("namespace not found")
	// ErrNoRoute is returned by RouteTable.Match when no pattern matches.
	ErrNoRoute = errors.New("no route")
)

// Phase names the dispatch step a failure happened in.
type Phase string

const (
	PhaseBinding  Phase = "binding"
	PhaseInvoking Phase = "invoking"
)

// DispatchError is a request-time failure. It carries the goroutine stack
// captured where the failure was detected.
type DispatchError struct {
	Phase Phase
	Route string
	Cause error
	Stack []byte
}

func newDispatchError(phase Phase, route string, cause error) *DispatchError {
	return &DispatchError{Phase: phase, Route: route, Cause: cause, Stack: debug.Stack()}
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Route, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Cause
}

// Trace renders the error followed by its captured stack.
func (e *DispatchError) Trace() string {
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteByte('\n')
	b.Write(e.Stack)
	return b.String()
}

// BindingError reports a request parameter that could not be coerced.
type BindingError struct {
	Param string
	Value string
	Type  string
	Err   error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return fmt.Sprintf("parameter %q: cannot convert %q to %s: %v", e.Param, e.Value, e.Type, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *BindingError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Trace returns the diagnostic text for err: the captured stack for a
// DispatchError, the error chain otherwise.
func Trace(err error) string {
	if err == nil {
		return ""
	}
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Trace()
	}
	return err.Error()
}
