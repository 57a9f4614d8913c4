// Package logging provides leveled logging and sweep progress tracing.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A ProgressLog for structured JSONL unit events (<results>/progress.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug. At this level every
// simulation run is logged.
const LevelTrace = slog.LevelDebug - 4

// ProgressFileName is the JSONL file a ProgressLog appends to.
const ProgressFileName = "progress.jsonl"

// ParseLevel maps a level name to a slog.Level.
// Supported values: "error", "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w. format "json" selects
// the JSON handler; anything else gives text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Progress event names.
const (
	EventUnitStarted  = "unit_started"
	EventUnitFinished = "unit_finished"
	EventUnitFailed   = "unit_failed"
	EventSweepDone    = "sweep_done"
)

// ProgressEvent is one line of the progress log.
type ProgressEvent struct {
	Time     time.Time `json:"time"`
	Event    string    `json:"event"`
	PIndex   int       `json:"p_index"`
	P        float64   `json:"p"`
	Batch    int       `json:"batch"`
	Runs     int       `json:"runs,omitempty"`
	Duration float64   `json:"duration_s,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ProgressLog appends sweep progress events to a JSONL file.
// It is safe for concurrent use. A nil ProgressLog is safe to use;
// all methods are no-ops on a nil receiver.
type ProgressLog struct {
	mu   sync.Mutex
	file *os.File
}

// NewProgressLog opens dir/progress.jsonl for append.
// At info level and above it returns nil and no file is created.
// It also returns nil if the file cannot be opened.
func NewProgressLog(dir, level string) *ProgressLog {
	if ParseLevel(level) >= slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, ProgressFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return &ProgressLog{file: f}
}

// Log writes ev as a single JSONL line, stamping Time if it is unset.
func (pl *ProgressLog) Log(ev ProgressEvent) {
	if pl == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')

	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.file == nil {
		return
	}
	_, _ = pl.file.Write(data)
}

// Close closes the underlying file. Safe to call on a nil receiver.
func (pl *ProgressLog) Close() {
	if pl == nil {
		return
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.file != nil {
		pl.file.Close()
		pl.file = nil
	}
}
