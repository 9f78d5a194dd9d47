package simulation

import (
	"github.com/nvandessel/prefgrow/internal/growth"
	"github.com/nvandessel/prefgrow/internal/model"
)

// Scenario defines a complete simulation experiment for the test harness.
type Scenario struct {
	Name string

	// Definition is the model to run. A zero value selects the default
	// rock-paper-scissors preset.
	Definition model.Definition

	// InitialDegrees, when non-nil, replaces the definition's seed degrees.
	InitialDegrees []int64

	Steps             int64
	RecordingInterval int64 // 0 means record after every step
	Seed              uint64

	// Source, when non-nil, replaces the seeded generator. Use this for
	// scenarios that need forced parent draws.
	Source growth.Source
}

// Result captures everything a scenario run produced.
type Result struct {
	Name string

	// Trajectory holds the degree state before the first step at index 0
	// and after step i at index i+1.
	Trajectory [][]int64
	Outcomes   []growth.Outcome
	Series     *Series
	Engine     *growth.Engine
}

// Totals returns the total degree at every trajectory entry.
func (r Result) Totals() []int64 {
	totals := make([]int64, len(r.Trajectory))
	for i, degrees := range r.Trajectory {
		for _, d := range degrees {
			totals[i] += d
		}
	}
	return totals
}

func (s Scenario) definition() (model.Definition, error) {
	if s.Definition.TypeCount() == 0 {
		return model.Preset(model.DefaultPreset)
	}
	return s.Definition, nil
}

func (s Scenario) config() Config {
	interval := s.RecordingInterval
	if interval == 0 {
		interval = 1
	}
	return Config{Steps: s.Steps, RecordingInterval: interval}
}
