package errors

import (
	"context"
	"log/slog"
)

// LogHandler is an ErrorHandler that writes errors to a slog.Logger.
type LogHandler struct {
	// Logger receives the records. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose adds stack traces to the records.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// level returns the record level for k. Geometry and structural failures
// abort a gesture without visible effect, so they are only debug noise.
func level(k ErrorKind) slog.Level {
	switch k {
	case KindGeometry, KindStructural:
		return slog.LevelDebug
	default:
		return slog.LevelError
	}
}

// HandleError logs a FlipError at a level chosen by its kind.
func (h *LogHandler) HandleError(err *FlipError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "error", err.Err}
	if err.Page >= 0 {
		attrs = append(attrs, "page", err.Page)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Log(context.Background(), level(err.Kind), "pageflip error", attrs...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"value", err.Value}
	if err.Op != "" {
		attrs = append(attrs, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("pageflip panic", attrs...)
}
