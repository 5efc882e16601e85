package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// maxStackDepth bounds the frames kept by CaptureStack.
const maxStackDepth = 32

var (
	// DefaultHandler receives every reported error. It starts as a
	// LogHandler writing to slog.Default().
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler installs h as the global error handler and returns the one it
// replaces. A nil h restores a plain LogHandler.
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := DefaultHandler
	DefaultHandler = h
	return prev
}

func handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report stamps err with the current time if it has none and passes it to
// the global handler. A nil err is ignored.
func Report(err *FlipError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	handler().HandleError(err)
}

// ReportPanic passes a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	handler().HandlePanic(err)
}

// Recover reports a panic in progress as a PanicError for op. It must be
// deferred directly:
//
//	defer errors.Recover("render.Render.Frame")
func Recover(op string) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
	}
}

// RecoverWithCallback is Recover followed by a call to callback with the
// panic value, for callers that must turn the panic into a return value.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
		if callback != nil {
			callback(r)
		}
	}
}

func reportRecovered(op string, r any) {
	ReportPanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	})
}

// CaptureStack formats the calling goroutine's stack, starting at the
// caller of CaptureStack, one "function\n\tfile:line" entry per frame.
func CaptureStack() string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

// Recorder is an ErrorHandler that keeps what it receives. It is meant for
// tests and for hosts that inspect failures after a batch of frames.
type Recorder struct {
	mu     sync.Mutex
	errs   []*FlipError
	panics []*PanicError
}

func (r *Recorder) HandleError(err *FlipError) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *Recorder) HandlePanic(err *PanicError) {
	r.mu.Lock()
	r.panics = append(r.panics, err)
	r.mu.Unlock()
}

// Errors returns the recorded errors in order.
func (r *Recorder) Errors() []*FlipError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*FlipError(nil), r.errs...)
}

// Panics returns the recorded panics in order.
func (r *Recorder) Panics() []*PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*PanicError(nil), r.panics...)
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.errs, r.panics = nil, nil
	r.mu.Unlock()
}
