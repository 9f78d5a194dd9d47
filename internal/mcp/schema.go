package mcp

import (
	"time"
)

// SimulateInput defines the input for the prefgrow_simulate tool.
type SimulateInput struct {
	Preset            string `json:"preset,omitempty" jsonschema:"Built-in model to run: rps or rpsls. Defaults to the configured model."`
	Steps             int64  `json:"steps,omitempty" jsonschema:"Number of growth steps. Defaults to the configured value."`
	RecordingInterval int64  `json:"recording_interval,omitempty" jsonschema:"Record proportions after every step whose index is a multiple of this."`
	Seed              uint64 `json:"seed,omitempty" jsonschema:"Random seed. 0 derives one from the clock."`
	Title             string `json:"title,omitempty" jsonschema:"Title stored with the run"`
	Save              bool   `json:"save,omitempty" jsonschema:"Save the finished run to the run store"`
}

// PointSummary is one recorded snapshot.
type PointSummary struct {
	Step        int64     `json:"step" jsonschema:"Zero-based index of the step after which the snapshot was taken"`
	Completed   int64     `json:"completed" jsonschema:"Steps completed at the snapshot"`
	Proportions []float64 `json:"proportions" jsonschema:"Per-type share of the total degree"`
}

// SimulateOutput defines the output for the prefgrow_simulate tool.
type SimulateOutput struct {
	RunID        string         `json:"run_id,omitempty" jsonschema:"Store ID when the run was saved"`
	Model        string         `json:"model" jsonschema:"Model name"`
	Labels       []string       `json:"labels" jsonschema:"Type labels in index order"`
	Seed         uint64         `json:"seed" jsonschema:"Seed actually used"`
	Steps        int64          `json:"steps" jsonschema:"Steps executed"`
	TotalDegree  int64          `json:"total_degree" jsonschema:"Sum of all final degrees"`
	FinalDegrees []int64        `json:"final_degrees" jsonschema:"Per-type degree after the last step"`
	Final        []float64      `json:"final" jsonschema:"Per-type proportion after the last step"`
	Points       []PointSummary `json:"points" jsonschema:"Recorded snapshots"`
	ElapsedMs    int64          `json:"elapsed_ms" jsonschema:"Wall-clock time spent stepping"`
	Message      string         `json:"message" jsonschema:"Human-readable result message"`
}

// RunsInput defines the input for the prefgrow_runs tool.
type RunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to list, newest first"`
}

// RunListItem provides a list view of a stored run.
type RunListItem struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Title             string    `json:"title,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Seed              uint64    `json:"seed"`
	Steps             int64     `json:"steps"`
	RecordingInterval int64     `json:"recording_interval"`
	Points            int       `json:"points"`
}

// RunsOutput defines the output for the prefgrow_runs tool.
type RunsOutput struct {
	Runs  []RunListItem `json:"runs" jsonschema:"Stored runs, newest first"`
	Count int           `json:"count" jsonschema:"Number of runs listed"`
}

// RunInput defines the input for the prefgrow_run tool.
type RunInput struct {
	ID     string `json:"id" jsonschema:"ID of the stored run"`
	Format string `json:"format,omitempty" jsonschema:"Optional rendering of the series: svg, csv or json"`
}

// RunOutput defines the output for the prefgrow_run tool.
type RunOutput struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Title             string    `json:"title,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Seed              uint64    `json:"seed"`
	Labels            []string  `json:"labels"`
	Steps             int64     `json:"steps"`
	RecordingInterval int64     `json:"recording_interval"`
	Points            int       `json:"points"`
	FinalDegrees      []int64   `json:"final_degrees"`
	Final             []float64 `json:"final"`
	Format            string    `json:"format,omitempty"`
	Rendered          string    `json:"rendered,omitempty" jsonschema:"The series rendered in the requested format"`
}

// PresetsInput defines the input for the prefgrow_presets tool.
type PresetsInput struct{}

// PresetItem describes a built-in model.
type PresetItem struct {
	Name        string   `json:"name" jsonschema:"Preset key accepted by prefgrow_simulate"`
	Model       string   `json:"model"`
	Labels      []string `json:"labels"`
	FirstWins   [][2]int `json:"first_wins" jsonschema:"Ordered type pairs whose first parent wins"`
	SeedDegrees []int64  `json:"seed_degrees"`
}

// PresetsOutput defines the output for the prefgrow_presets tool.
type PresetsOutput struct {
	Presets []PresetItem `json:"presets"`
	Default string       `json:"default"`
}
