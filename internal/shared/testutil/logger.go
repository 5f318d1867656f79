package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recorder is shared by a handler and every handler derived from it.
type recorder struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records log calls so tests can assert on them.
type CaptureHandler struct {
	rec   *recorder
	attrs []slog.Attr
	t     *testing.T
}

// NewCaptureHandler creates a handler that also echoes records to t when
// t is not nil.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{rec: &recorder{}, t: t}
}

// NewTestLogger returns a logger writing into a fresh CaptureHandler.
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(t)
	return slog.New(h), h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.rec.mu.Lock()
	h.rec.records = append(h.rec.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.rec.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs keeps attributes such as "component" visible in captured records.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{rec: h.rec, attrs: merged, t: h.t}
}

// WithGroup is flattened; groups are not needed by any assertion.
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []LogRecord {
	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	out := make([]LogRecord, len(h.rec.records))
	copy(out, h.rec.records)
	return out
}

// RecordsAt filters captured records by level.
func (h *CaptureHandler) RecordsAt(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// ContainsMessage reports whether any record's message contains msg.
func (h *CaptureHandler) ContainsMessage(msg string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, msg) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key=value.
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Reset drops every captured record.
func (h *CaptureHandler) Reset() {
	h.rec.mu.Lock()
	h.rec.records = nil
	h.rec.mu.Unlock()
}

// AssertLogContains fails t unless a record at level contains msg.
func AssertLogContains(t *testing.T, h *CaptureHandler, level slog.Level, msg string) {
	t.Helper()
	for _, r := range h.RecordsAt(level) {
		if strings.Contains(r.Message, msg) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, msg)
	for _, r := range h.Records() {
		t.Logf("  [%s] %s", r.Level, r.Message)
	}
}

// AssertNoErrors fails t if anything was logged at error level.
func AssertNoErrors(t *testing.T, h *CaptureHandler) {
	t.Helper()
	for _, r := range h.RecordsAt(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
