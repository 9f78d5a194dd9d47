// Package logging sets up prefgrow's stderr logger and the optional
// per-step trace file.
//
// Operational messages go through a leveled slog.Logger. At debug or trace
// level a StepTracer additionally writes every growth step to steps.jsonl so
// a run can be replayed pick by pick.
package logging

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nvandessel/prefgrow/internal/growth"
)

// LevelTrace sits below slog.LevelDebug and enables per-step output.
const LevelTrace = slog.LevelDebug - 4

// TraceFileName is the file StepTracer writes inside its directory.
const TraceFileName = "steps.jsonl"

var levels = map[string]slog.Level{
	"info":  slog.LevelInfo,
	"debug": slog.LevelDebug,
	"trace": LevelTrace,
}

// ParseLevel maps "info", "debug" or "trace" (any case) to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	if lvl, ok := levels[strings.ToLower(s)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger on w filtered at level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: traceLabel,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// traceLabel prints LevelTrace as TRACE instead of DEBUG-4.
func traceLabel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// StepTracer appends one JSON object per growth.Outcome to a file.
// Writes are buffered and flushed on Close. All methods are safe on a nil
// receiver and for concurrent use.
type StepTracer struct {
	mu    sync.Mutex
	file  *os.File
	buf   *bufio.Writer
	enc   *json.Encoder
	lines int64
}

// NewStepTracer truncates dir/steps.jsonl and returns a tracer writing to
// it. It returns nil at info level or when the file cannot be created, so
// callers can use the result unconditionally.
func NewStepTracer(dir string, level string) *StepTracer {
	if ParseLevel(level) >= slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, TraceFileName), os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	buf := bufio.NewWriterSize(f, 64*1024)
	return &StepTracer{file: f, buf: buf, enc: json.NewEncoder(buf)}
}

// Record writes out as one line. It has the signature of a
// simulation observer.
func (st *StepTracer) Record(out growth.Outcome) {
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.file == nil {
		return
	}
	if err := st.enc.Encode(out); err == nil {
		st.lines++
	}
}

// Lines reports how many steps have been written.
func (st *StepTracer) Lines() int64 {
	if st == nil {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lines
}

// Close flushes pending lines and closes the file.
func (st *StepTracer) Close() {
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.file == nil {
		return
	}
	_ = st.buf.Flush()
	_ = st.file.Close()
	st.file = nil
}
