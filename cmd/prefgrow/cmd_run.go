package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/prefgrow/internal/config"
	"github.com/nvandessel/prefgrow/internal/logging"
	"github.com/nvandessel/prefgrow/internal/sanitize"
	"github.com/nvandessel/prefgrow/internal/simulation"
	"github.com/nvandessel/prefgrow/internal/store"
	"github.com/nvandessel/prefgrow/internal/telemetry"
	"github.com/nvandessel/prefgrow/internal/visualization"
)

// runReport is the JSON summary printed by `run --json`.
type runReport struct {
	RunID          string    `json:"run_id,omitempty"`
	Model          string    `json:"model"`
	Seed           uint64    `json:"seed"`
	Steps          int64     `json:"steps"`
	Points         int       `json:"points"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Labels         []string  `json:"labels"`
	Final          []float64 `json:"final"`
	FinalDegrees   []int64   `json:"final_degrees"`
	Files          []string  `json:"files"`
	Interrupted    bool      `json:"interrupted,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a growth simulation and render the results",
		Long: `Run a typed preferential-attachment simulation.

Settings come from ~/.prefgrow/config.yaml (or --config), PREFGROW_*
environment variables, and finally the flags below.

Examples:
  prefgrow run                                  # rock-paper-scissors, 10,000 steps
  prefgrow run --preset rpsls --steps 1000000   # five types
  prefgrow run --seed 42 --format svg --format csv --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return executeRun(cmd, cfg)
		},
	}

	cmd.Flags().String("preset", "", "Built-in model: rps or rpsls")
	cmd.Flags().Int64("steps", 0, "Number of growth steps")
	cmd.Flags().Int64("interval", 0, "Record proportions after every step index divisible by this")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 derives one from the clock)")
	cmd.Flags().String("title", "", "Chart title")
	cmd.Flags().StringSlice("format", nil, "Output format: svg, csv, or json (repeatable)")
	cmd.Flags().StringP("out", "o", "", "Output directory")
	cmd.Flags().String("base", "", "Output file name stem")
	cmd.Flags().Bool("save", false, "Save the run to the run store")
	cmd.Flags().Bool("open", false, "Open the SVG chart when done")
	cmd.Flags().String("trace-dir", "", "Directory for steps.jsonl at debug/trace level (default: output directory)")

	return cmd
}

// applyRunFlags overrides cfg with the flags the user set.
func applyRunFlags(cmd *cobra.Command, cfg *config.PrefgrowConfig) error {
	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Model = config.ModelConfig{}
		cfg.Model.Preset, _ = flags.GetString("preset")
	}
	if flags.Changed("steps") {
		cfg.Run.Steps, _ = flags.GetInt64("steps")
	}
	if flags.Changed("interval") {
		cfg.Run.RecordingInterval, _ = flags.GetInt64("interval")
	}
	if flags.Changed("seed") {
		cfg.Run.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("title") {
		cfg.Output.Title, _ = flags.GetString("title")
	}
	if flags.Changed("format") {
		cfg.Output.Formats, _ = flags.GetStringSlice("format")
	}
	if flags.Changed("out") {
		cfg.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("base") {
		base, _ := flags.GetString("base")
		if sanitize.FileBase(base) == "" {
			return fmt.Errorf("--base %q has no usable file name characters", base)
		}
		cfg.Output.Base = base
	}
	return nil
}

func executeRun(cmd *cobra.Command, cfg *config.PrefgrowConfig) error {
	def, err := cfg.Model.Definition()
	if err != nil {
		return err
	}
	formats := make([]visualization.Format, 0, len(cfg.Output.Formats))
	for _, name := range cfg.Output.Formats {
		f, err := visualization.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	cfg.Output.Title = sanitize.Title(cfg.Output.Title)
	cfg.Output.Base = sanitize.FileBase(cfg.Output.Base)
	if cfg.Output.Base == "" {
		return errors.New("output base has no usable file name characters")
	}

	seed := simulation.ResolveSeed(cfg.Run.Seed)
	eng, err := simulation.NewEngine(def, seed)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signalContext(parent)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "prefgrow", version)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	traceDir, _ := cmd.Flags().GetString("trace-dir")
	if traceDir == "" {
		traceDir = cfg.Output.Dir
	}
	tracer := logging.NewStepTracer(traceDir, cfg.Logging.Level)
	defer tracer.Close()

	simCfg := simulation.Config{Steps: cfg.Run.Steps, RecordingInterval: cfg.Run.RecordingInterval}
	logger.Info("starting run",
		"model", def.Name, "types", def.TypeCount(), "steps", simCfg.Steps,
		"recording_interval", simCfg.RecordingInterval, "seed", seed)

	opts := []simulation.Option{
		simulation.WithLabels(def.Labels),
		simulation.WithLogger(logger),
	}
	if tracer != nil {
		opts = append(opts, simulation.WithObserver(tracer.Record))
	}
	series, runErr := simulation.Run(ctx, eng, simCfg, opts...)
	if tracer != nil {
		logger.Debug("step trace written", "dir", traceDir, "lines", tracer.Lines())
	}
	if series == nil {
		return fmt.Errorf("simulation failed: %w", runErr)
	}
	interrupted := runErr != nil
	if interrupted && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("simulation failed: %w", runErr)
	}

	files, err := renderFiles(cfg.Output.Dir, cfg.Output.Base, formats, visualization.Chart{Title: cfg.Output.Title, Series: series})
	if err != nil {
		return err
	}

	report := runReport{
		Model:          def.Name,
		Seed:           seed,
		Steps:          series.Steps,
		Points:         len(series.Points),
		ElapsedSeconds: series.Elapsed.Seconds(),
		Labels:         def.Labels,
		Final:          series.Final,
		FinalDegrees:   series.FinalDegrees,
		Files:          files,
		Interrupted:    interrupted,
	}

	if save, _ := cmd.Flags().GetBool("save"); save && !interrupted {
		id, err := saveRun(ctx, cfg, store.Run{Title: cfg.Output.Title, Seed: seed, Definition: def, Series: series})
		if err != nil {
			return err
		}
		report.RunID = id
	}

	if open, _ := cmd.Flags().GetBool("open"); open {
		for _, f := range formats {
			if f != visualization.FormatSVG {
				continue
			}
			path := visualization.FileName(cfg.Output.Dir, cfg.Output.Base, f)
			if err := visualization.OpenFile(path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not open chart: %v\nOpen %s manually.\n", err, path)
			}
		}
	}

	if jsonOutput(cmd) {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printRunSummary(cmd, report)
	}

	if interrupted {
		return fmt.Errorf("run interrupted after %d steps: %w", series.Steps, runErr)
	}
	return nil
}

// renderFiles writes one file per format and returns their paths.
func renderFiles(dir, base string, formats []visualization.Format, chart visualization.Chart) ([]string, error) {
	if len(formats) == 0 {
		return []string{}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := make([]string, 0, len(formats))
	for _, f := range formats {
		path := visualization.FileName(dir, base, f)
		if err := writeRendered(path, f, chart); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writeRendered(path string, f visualization.Format, chart visualization.Chart) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := visualization.Render(out, f, chart); err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	return nil
}

func saveRun(ctx context.Context, cfg *config.PrefgrowConfig, run store.Run) (string, error) {
	s, err := openStore(cfg)
	if err != nil {
		return "", err
	}
	defer s.Close()

	id, err := s.SaveRun(ctx, run)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

func printRunSummary(cmd *cobra.Command, r runReport) {
	w := cmd.OutOrStdout()
	status := "Ran"
	if r.Interrupted {
		status = "Interrupted after"
	}
	fmt.Fprintf(w, "%s %d steps of %s in %.3fs (seed %d)\n", status, r.Steps, r.Model, r.ElapsedSeconds, r.Seed)
	fmt.Fprintln(w)
	for k, p := range r.Final {
		label := fmt.Sprintf("type %d", k)
		if k < len(r.Labels) {
			label = r.Labels[k]
		}
		fmt.Fprintf(w, "  %-10s %.4f  (degree %d)\n", label, p, r.FinalDegrees[k])
	}
	if len(r.Files) > 0 {
		fmt.Fprintln(w)
		for _, f := range r.Files {
			fmt.Fprintf(w, "Wrote %s\n", f)
		}
	}
	if r.RunID != "" {
		fmt.Fprintf(w, "Saved as %s\n", r.RunID)
	}
}
