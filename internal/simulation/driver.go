package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nvandessel/prefgrow/internal/growth"
	"github.com/nvandessel/prefgrow/internal/model"
)

const tracerName = "github.com/nvandessel/prefgrow/internal/simulation"

// Config holds the driver's loop parameters.
type Config struct {
	// Steps is the number of growth steps to run (N).
	Steps int64

	// RecordingInterval is the sampling period: a snapshot is recorded after
	// every step whose 0-based index is a multiple of it.
	RecordingInterval int64
}

// Validate checks the loop parameters.
func (c Config) Validate() error {
	if c.Steps < 0 {
		return model.Configf("steps", "must be non-negative, got %d", c.Steps)
	}
	if c.RecordingInterval < 1 {
		return model.Configf("recording_interval", "must be at least 1, got %d", c.RecordingInterval)
	}
	return nil
}

// Records reports whether a snapshot is taken after step index i.
func (c Config) Records(i int64) bool {
	return i%c.RecordingInterval == 0
}

// ExpectedPoints returns how many points a full run records.
func (c Config) ExpectedPoints() int {
	if c.Steps <= 0 {
		return 0
	}
	return int((c.Steps-1)/c.RecordingInterval) + 1
}

// Option customizes a single Run.
type Option func(*runOptions)

type runOptions struct {
	observer func(growth.Outcome)
	logger   *slog.Logger
	labels   []string
}

// WithObserver registers fn to be called after every step, before any
// snapshot for that step is recorded.
func WithObserver(fn func(growth.Outcome)) Option {
	return func(o *runOptions) { o.observer = fn }
}

// WithLogger sets the logger used for progress output.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLabels attaches type labels to the resulting Series.
func WithLabels(labels []string) Option {
	return func(o *runOptions) { o.labels = append([]string(nil), labels...) }
}

// Run steps eng cfg.Steps times, strictly in order, and records a snapshot
// immediately after every step selected by cfg.Records. The seed
// proportions are captured in Series.Initial before the first step.
//
// Cancellation is checked between steps. A cancelled run returns the
// partial series together with the context's error.
func Run(ctx context.Context, eng *growth.Engine, cfg Config, opts ...Option) (series *Series, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := runOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "simulation.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("simulation.steps", cfg.Steps),
			attribute.Int64("simulation.recording_interval", cfg.RecordingInterval),
			attribute.Int("simulation.types", eng.TypeCount()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if series != nil {
			span.SetAttributes(attribute.Int("simulation.points", len(series.Points)))
		}
		span.End()
	}()

	initial, err := eng.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}

	series = &Series{
		Labels:            o.labels,
		RecordingInterval: cfg.RecordingInterval,
		Initial:           initial.Proportions,
		Points:            make([]Point, 0, cfg.ExpectedPoints()),
	}

	start := time.Now()
	done := ctx.Done()
	var runErr error
	for i := int64(0); i < cfg.Steps; i++ {
		select {
		case <-done:
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			o.logger.Info("run cancelled", "completed_steps", i, "err", runErr)
			break
		}

		out, err := eng.Step()
		if err != nil {
			runErr = fmt.Errorf("step %d: %w", i, err)
			break
		}
		if o.observer != nil {
			o.observer(out)
		}

		if cfg.Records(i) {
			snap, err := eng.Snapshot()
			if err != nil {
				runErr = fmt.Errorf("snapshot after step %d: %w", i, err)
				break
			}
			series.Points = append(series.Points, Point{Step: i, Proportions: snap.Proportions})
			o.logger.Debug("recorded snapshot", "step", i, "proportions", snap.Proportions)
		}
	}

	series.Elapsed = time.Since(start)
	series.Steps = eng.Steps()
	series.FinalDegrees = eng.Degrees()
	if final, err := eng.Snapshot(); err == nil {
		series.Final = final.Proportions
	}

	o.logger.Debug("run finished",
		"steps", series.Steps,
		"points", len(series.Points),
		"elapsed", series.Elapsed,
	)
	return series, runErr
}
