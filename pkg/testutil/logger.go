// Package testutil provides loggers, photo fixtures and request helpers
// shared by the photogeo package tests.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// NewTestLogger returns a debug-level text logger writing to w, or
// discarding output when w is nil.
func NewTestLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// DiscardLogger returns a logger that discards all output
func DiscardLogger() *slog.Logger {
	return NewTestLogger(nil)
}

// LogRecorder collects log output. Schedulers log from timer goroutines,
// so writes and reads are serialized.
type LogRecorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewRecordingLogger returns a debug-level logger and the recorder it
// writes to.
func NewRecordingLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return NewTestLogger(rec), rec
}

func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// String returns everything logged so far.
func (r *LogRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Lines returns the logged lines whose msg attribute equals msg.
func (r *LogRecorder) Lines(msg string) []string {
	want := " msg=" + quoteValue(msg) + " "

	var out []string
	for _, line := range strings.Split(r.String(), "\n") {
		if strings.Contains(" "+line+" ", want) {
			out = append(out, line)
		}
	}
	return out
}

// quoteValue quotes v the way slog.TextHandler does for values that need it.
func quoteValue(v string) string {
	if strings.ContainsAny(v, " =\"") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
