// Package errors provides structured error handling for the page flip engine.
//
// Degenerate fold geometry is not an error at this level: the flip package
// skips such frames silently. The types here cover failures the host should
// hear about, such as a page that cannot be resolved or a bad settings file.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindGeometry indicates invalid page or book dimensions.
	KindGeometry
	// KindStructural indicates a page or spread that could not be resolved.
	KindStructural
	// KindConfig indicates invalid settings.
	KindConfig
	// KindRender indicates a drawing or export failure.
	KindRender
	// KindInput indicates a malformed pointer event or page source.
	KindInput
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindStructural:
		return "structural"
	case KindConfig:
		return "config"
	case KindRender:
		return "render"
	case KindInput:
		return "input"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// FlipError represents a structured error raised by the engine.
type FlipError struct {
	// Op is the operation that failed (e.g., "flip.Controller.Start").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Page is the page index involved, or -1 when not applicable.
	Page int
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

// New returns a FlipError with no page attached.
func New(op string, kind ErrorKind, err error) *FlipError {
	return &FlipError{Op: op, Kind: kind, Err: err, Page: -1}
}

func (e *FlipError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s [%s] page=%d: %v", e.Op, e.Kind, e.Page, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FlipError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "render.Render.Frame").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ValidationError reports a setting that is out of range.
type ValidationError struct {
	// Field is the settings key, as written in the config file.
	Field string
	// Value is the rejected value.
	Value any
	// Reason says what the value must satisfy.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *FlipError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
