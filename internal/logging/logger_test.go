package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/prefgrow/internal/growth"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
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

func TestNewLogger_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf)
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message should be logged")
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "step")

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}

func TestNewStepTracer_InfoLevelReturnsNil(t *testing.T) {
	dir := t.TempDir()
	if st := NewStepTracer(dir, "info"); st != nil {
		t.Error("expected nil tracer at info level")
	}
	if _, err := os.Stat(filepath.Join(dir, TraceFileName)); !os.IsNotExist(err) {
		t.Error("no trace file should be created at info level")
	}
}

func TestStepTracer_Record(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trace")
	st := NewStepTracer(dir, "debug")
	if st == nil {
		t.Fatal("expected tracer at debug level")
	}

	st.Record(growth.Outcome{Index: 0, First: 0, Second: 1, Winner: 1})
	st.Record(growth.Outcome{Index: 1, First: 2, Second: 0, Winner: 0})
	if n := st.Lines(); n != 2 {
		t.Errorf("Lines() = %d, want 2", n)
	}
	st.Close()

	f, err := os.Open(filepath.Join(dir, TraceFileName))
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}
	defer f.Close()

	var got []growth.Outcome
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var out growth.Outcome
		if err := json.Unmarshal(scanner.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		got = append(got, out)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].Winner != 1 || got[1].Index != 1 || got[1].First != 2 {
		t.Errorf("unexpected trace contents: %+v", got)
	}
}

func TestStepTracer_NilSafe(t *testing.T) {
	var st *StepTracer
	st.Record(growth.Outcome{})
	if st.Lines() != 0 {
		t.Error("nil tracer should report zero lines")
	}
	st.Close()
}

func TestStepTracer_RecordAfterClose(t *testing.T) {
	st := NewStepTracer(t.TempDir(), "trace")
	if st == nil {
		t.Fatal("expected tracer at trace level")
	}
	st.Close()
	st.Record(growth.Outcome{Index: 5})
	if st.Lines() != 0 {
		t.Errorf("Lines() = %d after close, want 0", st.Lines())
	}
	st.Close()
}
