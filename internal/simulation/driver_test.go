package simulation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/nvandessel/prefgrow/internal/growth"
	"github.com/nvandessel/prefgrow/internal/model"
)

func newEngine(t *testing.T, seed uint64) *growth.Engine {
	t.Helper()
	d, err := model.Preset("rps")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	table, degrees, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	eng, err := growth.NewEngine(table, degrees, growth.NewSource(seed))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Steps: 10, RecordingInterval: 3}, false},
		{"zero steps", Config{Steps: 0, RecordingInterval: 1}, false},
		{"negative steps", Config{Steps: -1, RecordingInterval: 1}, true},
		{"zero interval", Config{Steps: 10, RecordingInterval: 0}, true},
		{"negative interval", Config{Steps: 10, RecordingInterval: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cfgErr *model.ConfigurationError
			if err != nil && !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %T", err)
			}
		})
	}
}

func TestConfig_ExpectedPoints(t *testing.T) {
	tests := []struct {
		steps, interval int64
		want            int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{10, 1, 10},
		{1000, 1000, 1},
		{1001, 1000, 2},
		{10000, 1000, 10},
		{5, 100, 1},
	}
	for _, tt := range tests {
		cfg := Config{Steps: tt.steps, RecordingInterval: tt.interval}
		if got := cfg.ExpectedPoints(); got != tt.want {
			t.Errorf("ExpectedPoints(%d,%d) = %d, want %d", tt.steps, tt.interval, got, tt.want)
		}
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	eng := newEngine(t, 1)
	_, err := Run(context.Background(), eng, Config{Steps: 5, RecordingInterval: 0})
	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if eng.Steps() != 0 {
		t.Errorf("invalid config still ran %d steps", eng.Steps())
	}
}

func TestRun_RecordsOnIntervalIndices(t *testing.T) {
	eng := newEngine(t, 3)
	series, err := Run(context.Background(), eng, Config{Steps: 25, RecordingInterval: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	AssertRecordedAt(t, series, 0, 10, 20)
	if series.Points[1].Completed() != 11 {
		t.Errorf("Completed() = %d, want 11", series.Points[1].Completed())
	}
	if series.Steps != 25 {
		t.Errorf("Steps = %d, want 25", series.Steps)
	}
}

func TestRun_ObserverSeesEveryStep(t *testing.T) {
	eng := newEngine(t, 4)
	var indices []int64
	_, err := Run(context.Background(), eng, Config{Steps: 50, RecordingInterval: 7},
		WithObserver(func(out growth.Outcome) { indices = append(indices, out.Index) }),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(indices) != 50 {
		t.Fatalf("observer called %d times, want 50", len(indices))
	}
	for i, idx := range indices {
		if idx != int64(i) {
			t.Fatalf("observer call %d saw index %d", i, idx)
		}
	}
}

func TestRun_SnapshotFollowsTriggeringStep(t *testing.T) {
	eng := newEngine(t, 8)
	var afterStep [][]int64
	series, err := Run(context.Background(), eng, Config{Steps: 30, RecordingInterval: 5},
		WithObserver(func(growth.Outcome) {
			afterStep = append(afterStep, eng.Degrees())
		}),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, p := range series.Points {
		degrees := afterStep[p.Step]
		total := float64(6 + 4*(p.Step+1))
		for k, share := range p.Proportions {
			if want := float64(degrees[k]) / total; share != want {
				t.Errorf("point %d type %d: share %v, want %v", p.Step, k, share, want)
			}
		}
	}
}

func TestRun_ZeroSteps(t *testing.T) {
	eng := newEngine(t, 1)
	before := eng.Degrees()

	series, err := Run(context.Background(), eng, Config{Steps: 0, RecordingInterval: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(series.Points) != 0 {
		t.Errorf("got %d points, want 0", len(series.Points))
	}
	if len(series.Initial) != 3 {
		t.Errorf("Initial has %d entries, want 3", len(series.Initial))
	}
	after := eng.Degrees()
	for k := range before {
		if before[k] != after[k] {
			t.Fatalf("degrees changed: %v -> %v", before, after)
		}
	}
}

func TestRun_IntervalLargerThanSteps(t *testing.T) {
	eng := newEngine(t, 1)
	series, err := Run(context.Background(), eng, Config{Steps: 50, RecordingInterval: 500})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	AssertRecordedAt(t, series, 0)
}

func TestRun_Cancelled(t *testing.T) {
	eng := newEngine(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	var seen int
	series, err := Run(ctx, eng, Config{Steps: 1000, RecordingInterval: 1},
		WithObserver(func(growth.Outcome) {
			seen++
			if seen == 10 {
				cancel()
			}
		}),
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if series == nil {
		t.Fatal("expected partial series on cancellation")
	}
	if eng.Steps() != 10 || series.Steps != 10 {
		t.Errorf("ran %d steps (series %d), want 10", eng.Steps(), series.Steps)
	}
	if len(series.Points) != 10 {
		t.Errorf("got %d points, want 10", len(series.Points))
	}
}

func TestRun_LabelsAndLogger(t *testing.T) {
	eng := newEngine(t, 1)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	labels := []string{"rock", "paper", "scissors"}
	series, err := Run(context.Background(), eng, Config{Steps: 3, RecordingInterval: 1},
		WithLabels(labels), WithLogger(logger))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	labels[0] = "changed"
	if series.Label(0) != "rock" {
		t.Errorf("Label(0) = %q, want rock", series.Label(0))
	}
	if series.Label(9) != "" {
		t.Errorf("Label(9) = %q, want empty", series.Label(9))
	}
	if !strings.Contains(buf.String(), "recorded snapshot") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestSeries_Column(t *testing.T) {
	s := &Series{
		Initial: []float64{0.5, 0.5},
		Points: []Point{
			{Step: 0, Proportions: []float64{0.4, 0.6}},
			{Step: 1, Proportions: []float64{0.3, 0.7}},
		},
	}
	col := s.Column(1)
	if len(col) != 2 || col[0] != 0.6 || col[1] != 0.7 {
		t.Errorf("Column(1) = %v", col)
	}
	if s.TypeCount() != 2 {
		t.Errorf("TypeCount() = %d, want 2", s.TypeCount())
	}
}
