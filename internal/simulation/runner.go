package simulation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/nvandessel/prefgrow/internal/growth"
)

// Runner executes scenarios inside a test, failing it on any error.
type Runner struct {
	t *testing.T
}

// NewRunner creates a runner bound to t.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes the scenario and returns the captured trajectory.
func (r *Runner) Run(scenario Scenario) Result {
	r.t.Helper()

	// Phase 1: build the model and engine.
	def, err := scenario.definition()
	if err != nil {
		r.t.Fatalf("%s: definition: %v", scenario.Name, err)
	}
	table, seed, err := def.Build()
	if err != nil {
		r.t.Fatalf("%s: build: %v", scenario.Name, err)
	}
	if scenario.InitialDegrees != nil {
		seed = scenario.InitialDegrees
	}
	src := scenario.Source
	if src == nil {
		src = growth.NewSource(scenario.Seed)
	}
	eng, err := growth.NewEngine(table, seed, src)
	if err != nil {
		r.t.Fatalf("%s: NewEngine: %v", scenario.Name, err)
	}

	// Phase 2: run, capturing the degree state after every step.
	result := Result{
		Name:       scenario.Name,
		Trajectory: [][]int64{eng.Degrees()},
		Engine:     eng,
	}
	observe := func(out growth.Outcome) {
		result.Outcomes = append(result.Outcomes, out)
		result.Trajectory = append(result.Trajectory, eng.Degrees())
	}

	series, err := Run(context.Background(), eng, scenario.config(),
		WithObserver(observe),
		WithLabels(def.Labels),
	)
	if err != nil {
		r.t.Fatalf("%s: Run: %v", scenario.Name, err)
	}
	result.Series = series
	return result
}

// FormatResultDebug returns a short dump of a result for failure output.
func FormatResultDebug(res Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario %s: steps=%d points=%d\n", res.Name, len(res.Outcomes), len(res.Series.Points))
	for _, p := range res.Series.Points {
		fmt.Fprintf(&b, "  step %d:", p.Step)
		for _, v := range p.Proportions {
			fmt.Fprintf(&b, " %.4f", v)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  final degrees: %v\n", res.Series.FinalDegrees)
	return b.String()
}
