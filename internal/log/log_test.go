package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// newTestLogger returns a Logger that writes JSON into buf.
func newTestLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return NewWriter(buf, level, false)
}

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	l.Module("sign").With("attempt", 3).Debug("candidate rejected")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["module"] != "sign" {
		t.Fatalf("module = %v, want %q", entry["module"], "sign")
	}
	if entry["attempt"] != float64(3) {
		t.Fatalf("attempt = %v, want 3", entry["attempt"])
	}
	if entry["msg"] != "candidate rejected" {
		t.Fatalf("msg = %v", entry["msg"])
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level  slog.Level
		logFn  func(l *Logger)
		expect bool
	}{
		{slog.LevelInfo, func(l *Logger) { l.Debug("nope") }, false},
		{slog.LevelInfo, func(l *Logger) { l.Info("yes") }, true},
		{slog.LevelWarn, func(l *Logger) { l.Info("nope") }, false},
		{slog.LevelWarn, func(l *Logger) { l.Error("yes") }, true},
		{slog.LevelDebug, func(l *Logger) { l.Debug("yes") }, true},
	}

	for i, tt := range tests {
		var buf bytes.Buffer
		tt.logFn(newTestLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.expect {
			t.Errorf("case %d: output present = %v, want %v", i, got, tt.expect)
		}
	}
}

func TestLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, slog.LevelInfo, true).Info("sealed", "bytes", 42)
	if !strings.Contains(buf.String(), "bytes=42") {
		t.Errorf("text output missing attribute: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Slog().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not enable any level")
	}
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	var buf bytes.Buffer
	SetDefault(newTestLogger(&buf, slog.LevelDebug))
	SetDefault(nil)
	Warn("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not used: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{" INFO ", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"Warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
