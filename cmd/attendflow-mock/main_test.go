package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestMultiHandler(t *testing.T) {
	var debug, warn bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h).With("component", "test")

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = false")
	}

	logger.Debug("quiet")
	logger.Warn("loud")

	if !strings.Contains(debug.String(), "quiet") || !strings.Contains(debug.String(), "loud") {
		t.Errorf("debug handler got %q", debug.String())
	}
	if strings.Contains(warn.String(), "quiet") || !strings.Contains(warn.String(), `"component":"test"`) {
		t.Errorf("warn handler got %q", warn.String())
	}
}
