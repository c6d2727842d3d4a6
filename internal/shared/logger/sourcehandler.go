package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// sourceHandler decorates records at or above a minimum level with the
// source location resolved from the record's program counter. The
// wrapped handler must run with AddSource disabled or locations double
// up.
type sourceHandler struct {
	next slog.Handler
	min  slog.Level
}

// withSourceAbove attaches file, line and function to every record at
// or above min. Records below min pass through untouched, which keeps
// routine info lines short while warnings stay traceable.
func withSourceAbove(next slog.Handler, min slog.Level) slog.Handler {
	return &sourceHandler{next: next, min: min}
}

func (h *sourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.min && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		}))
	}
	return h.next.Handle(ctx, r)
}

func (h *sourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceHandler{next: h.next.WithAttrs(attrs), min: h.min}
}

func (h *sourceHandler) WithGroup(name string) slog.Handler {
	return &sourceHandler{next: h.next.WithGroup(name), min: h.min}
}
