package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceAttachedAboveThreshold(t *testing.T) {
	tests := []struct {
		name       string
		log        func(l *slog.Logger)
		wantSource bool
	}{
		{"debug stays bare", func(l *slog.Logger) { l.Debug("m") }, false},
		{"info stays bare", func(l *slog.Logger) { l.Info("m") }, false},
		{"warn is located", func(l *slog.Logger) { l.Warn("m") }, true},
		{"error is located", func(l *slog.Logger) { l.Error("m") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			tt.log(slog.New(withSourceAbove(base, slog.LevelWarn)))
			assert.Equal(t, tt.wantSource, strings.Contains(buf.String(), "source="), buf.String())
		})
	}
}

func TestSourceHandlerKeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	log := slog.New(withSourceAbove(base, slog.LevelError)).With("request_id", "r-1").WithGroup("http")

	log.Info("handled", "path", "/programs")

	out := buf.String()
	assert.Contains(t, out, "request_id=r-1")
	assert.Contains(t, out, "http.path=/programs")
	assert.NotContains(t, out, "source=")
}

func TestSourceHandlerDelegatesEnabled(t *testing.T) {
	base := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := withSourceAbove(base, slog.LevelError)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}
