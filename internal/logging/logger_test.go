package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"error", "error", slog.LevelError},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level      string
		logAtTrace bool
		logAtDebug bool
		logAtInfo  bool
	}{
		{"warn", false, false, false},
		{"info", false, false, true},
		{"debug", false, true, true},
		{"trace", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, "text", &buf)

			check := func(level slog.Level, msg string, want bool) {
				t.Helper()
				buf.Reset()
				logger.Log(t.Context(), level, msg)
				if got := strings.Contains(buf.String(), msg); got != want {
					t.Errorf("%s visible = %v, want %v (buf: %q)", msg, got, want, buf.String())
				}
			}
			check(LevelTrace, "trace message", tt.logAtTrace)
			check(slog.LevelDebug, "debug message", tt.logAtDebug)
			check(slog.LevelInfo, "info message", tt.logAtInfo)
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", "text", &buf)
	logger.Log(t.Context(), LevelTrace, "run")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)
	logger.Info("unit finished", "p_index", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "unit finished" || entry["p_index"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewProgressLog_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	pl := NewProgressLog(dir, "info")
	if pl != nil {
		t.Error("expected nil ProgressLog at info level")
	}

	pl.Log(ProgressEvent{Event: EventUnitStarted})
	pl.Close()

	if _, err := os.Stat(filepath.Join(dir, ProgressFileName)); err == nil {
		t.Error("progress log should not exist at info level")
	}
}

func readEvents(t *testing.T, path string) []ProgressEvent {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var events []ProgressEvent
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var ev ProgressEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("failed to parse line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestProgressLog_Events(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	pl := NewProgressLog(dir, "debug")
	if pl == nil {
		t.Fatal("expected non-nil ProgressLog at debug level")
	}

	pl.Log(ProgressEvent{Event: EventUnitStarted, PIndex: 4, P: 0.0251, Batch: 5})
	pl.Log(ProgressEvent{Event: EventUnitFinished, PIndex: 4, P: 0.0251, Batch: 5, Runs: 256, Duration: 1.5})
	pl.Close()

	events := readEvents(t, filepath.Join(dir, ProgressFileName))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Event != EventUnitStarted || events[1].Event != EventUnitFinished {
		t.Errorf("unexpected event order: %q, %q", events[0].Event, events[1].Event)
	}
	if events[1].Runs != 256 || events[1].Batch != 5 {
		t.Errorf("unexpected finished event %+v", events[1])
	}
	if events[0].Time.IsZero() {
		t.Error("expected time to be stamped")
	}
}

func TestProgressLog_Concurrent(t *testing.T) {
	dir := t.TempDir()
	pl := NewProgressLog(dir, "trace")
	defer pl.Close()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pl.Log(ProgressEvent{Event: EventUnitFinished, Batch: i})
		}()
	}
	wg.Wait()

	if got := len(readEvents(t, filepath.Join(dir, ProgressFileName))); got != 20 {
		t.Errorf("expected 20 events, got %d", got)
	}
}

func TestProgressLog_NilSafety(t *testing.T) {
	var pl *ProgressLog
	pl.Log(ProgressEvent{Event: "should_not_panic"})
	pl.Close()
}

func TestProgressLog_LogAfterClose(t *testing.T) {
	pl := NewProgressLog(t.TempDir(), "debug")
	pl.Close()
	pl.Log(ProgressEvent{Event: EventSweepDone})
	pl.Close()
}
