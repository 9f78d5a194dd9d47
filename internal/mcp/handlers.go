package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/prefgrow/internal/constants"
	"github.com/nvandessel/prefgrow/internal/model"
	"github.com/nvandessel/prefgrow/internal/ratelimit"
	"github.com/nvandessel/prefgrow/internal/sanitize"
	"github.com/nvandessel/prefgrow/internal/simulation"
	"github.com/nvandessel/prefgrow/internal/store"
	"github.com/nvandessel/prefgrow/internal/visualization"
)

// registerTools registers all prefgrow MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "prefgrow_simulate",
		Description: "Run a typed preferential-attachment growth simulation and return the proportion time series",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "prefgrow_runs",
		Description: "List stored simulation runs, newest first",
	}, s.handleRuns)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "prefgrow_run",
		Description: "Fetch a stored run, optionally rendered as SVG, CSV or JSON",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "prefgrow_presets",
		Description: "List the built-in type models and their win tables",
	}, s.handlePresets)
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("prefgrow_simulate", start, retErr, auditParams(map[string]interface{}{
			"preset": args.Preset, "steps": args.Steps, "recording_interval": args.RecordingInterval,
			"seed": args.Seed, "save": args.Save,
		}))
	}()

	def, err := s.definition(args.Preset)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	cfg := simulation.Config{
		Steps:             s.settings.Run.Steps,
		RecordingInterval: s.settings.Run.RecordingInterval,
	}
	if args.Steps != 0 {
		cfg.Steps = args.Steps
	}
	if args.RecordingInterval != 0 {
		cfg.RecordingInterval = args.RecordingInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, SimulateOutput{}, err
	}
	if cfg.Steps > constants.MaxMCPSteps {
		return nil, SimulateOutput{}, fmt.Errorf("steps %d exceeds the per-call maximum of %d", cfg.Steps, constants.MaxMCPSteps)
	}

	if err := ratelimit.CheckLimit(s.limiters, "prefgrow_simulate", float64(cfg.Steps)); err != nil {
		return nil, SimulateOutput{}, err
	}

	seed := args.Seed
	if seed == 0 {
		seed = s.settings.Run.Seed
	}
	seed = simulation.ResolveSeed(seed)

	eng, err := simulation.NewEngine(def, seed)
	if err != nil {
		return nil, SimulateOutput{}, err
	}
	series, err := simulation.Run(ctx, eng, cfg,
		simulation.WithLabels(def.Labels),
		simulation.WithLogger(s.logger),
	)
	if err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	out := SimulateOutput{
		Model:        def.Name,
		Labels:       def.Labels,
		Seed:         seed,
		Steps:        series.Steps,
		TotalDegree:  eng.TotalDegree(),
		FinalDegrees: series.FinalDegrees,
		Final:        series.Final,
		Points:       pointSummaries(series),
		ElapsedMs:    series.Elapsed.Milliseconds(),
	}

	if args.Save {
		id, err := s.store.SaveRun(ctx, store.Run{
			Title:      sanitize.Title(args.Title),
			Seed:       seed,
			Definition: def,
			Series:     series,
		})
		if err != nil {
			return nil, SimulateOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = id
	}

	out.Message = fmt.Sprintf("Ran %d steps of %s (seed %d): %s", out.Steps, def.Name, seed, formatProportions(def.Labels, out.Final))
	if out.RunID != "" {
		out.Message += fmt.Sprintf(". Saved as %s", out.RunID)
	}
	return nil, out, nil
}

func (s *Server) handleRuns(ctx context.Context, req *sdk.CallToolRequest, args RunsInput) (_ *sdk.CallToolResult, _ RunsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("prefgrow_runs", start, retErr, auditParams(map[string]interface{}{"limit": args.Limit}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "prefgrow_runs", 1); err != nil {
		return nil, RunsOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = constants.DefaultListLimit
	}
	summaries, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]RunListItem, 0, len(summaries))
	for _, r := range summaries {
		runs = append(runs, RunListItem{
			ID:                r.ID,
			Name:              r.Name,
			Title:             r.Title,
			CreatedAt:         r.CreatedAt,
			Seed:              r.Seed,
			Steps:             r.Steps,
			RecordingInterval: r.RecordingInterval,
			Points:            r.Points,
		})
	}
	return nil, RunsOutput{Runs: runs, Count: len(runs)}, nil
}

func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, _ RunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("prefgrow_run", start, retErr, auditParams(map[string]interface{}{"id": args.ID, "format": args.Format}))
	}()

	if err := ratelimit.CheckLimit(s.limiters, "prefgrow_run", 1); err != nil {
		return nil, RunOutput{}, err
	}
	if args.ID == "" {
		return nil, RunOutput{}, errors.New("id is required")
	}

	var format visualization.Format
	if args.Format != "" {
		f, err := visualization.ParseFormat(args.Format)
		if err != nil {
			return nil, RunOutput{}, err
		}
		format = f
	}

	run, err := s.store.GetRun(ctx, args.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, RunOutput{}, fmt.Errorf("run %s not found", args.ID)
		}
		return nil, RunOutput{}, fmt.Errorf("failed to load run: %w", err)
	}

	out := RunOutput{
		ID:                run.ID,
		Name:              run.Definition.Name,
		Title:             run.Title,
		CreatedAt:         run.CreatedAt,
		Seed:              run.Seed,
		Labels:            run.Definition.Labels,
		Steps:             run.Series.Steps,
		RecordingInterval: run.Series.RecordingInterval,
		Points:            len(run.Series.Points),
		FinalDegrees:      run.Series.FinalDegrees,
		Final:             run.Series.Final,
	}

	if format != "" {
		var buf bytes.Buffer
		chart := visualization.Chart{Title: run.Title, Series: run.Series}
		if err := visualization.Render(&buf, format, chart); err != nil {
			return nil, RunOutput{}, err
		}
		out.Format = string(format)
		out.Rendered = buf.String()
	}
	return nil, out, nil
}

func (s *Server) handlePresets(ctx context.Context, req *sdk.CallToolRequest, args PresetsInput) (_ *sdk.CallToolResult, _ PresetsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("prefgrow_presets", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.limiters, "prefgrow_presets", 1); err != nil {
		return nil, PresetsOutput{}, err
	}

	names := model.PresetNames()
	presets := make([]PresetItem, 0, len(names))
	for _, name := range names {
		def, err := model.Preset(name)
		if err != nil {
			return nil, PresetsOutput{}, err
		}
		pairs := make([][2]int, len(def.FirstWins))
		for i, p := range def.FirstWins {
			pairs[i] = [2]int{int(p.First), int(p.Second)}
		}
		presets = append(presets, PresetItem{
			Name:        name,
			Model:       def.Name,
			Labels:      def.Labels,
			FirstWins:   pairs,
			SeedDegrees: def.SeedDegrees,
		})
	}
	return nil, PresetsOutput{Presets: presets, Default: model.DefaultPreset}, nil
}

// definition resolves a preset name, or the configured model when empty.
func (s *Server) definition(preset string) (model.Definition, error) {
	if preset != "" {
		return model.Preset(preset)
	}
	return s.settings.Model.Definition()
}

func pointSummaries(series *simulation.Series) []PointSummary {
	points := make([]PointSummary, len(series.Points))
	for i, p := range series.Points {
		points[i] = PointSummary{Step: p.Step, Completed: p.Completed(), Proportions: p.Proportions}
	}
	return points
}

func formatProportions(labels []string, props []float64) string {
	var buf bytes.Buffer
	for k, p := range props {
		if k > 0 {
			buf.WriteString(", ")
		}
		label := fmt.Sprintf("type %d", k)
		if k < len(labels) {
			label = labels[k]
		}
		fmt.Fprintf(&buf, "%s %.4f", label, p)
	}
	return buf.String()
}
