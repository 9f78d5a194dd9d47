package model

import (
	"fmt"
	"sort"
)

// Definition is a complete, named model: type labels, the first-win pairs,
// and the degree-mass of the seed graph per type.
type Definition struct {
	Name        string   `json:"name" yaml:"name"`
	Labels      []string `json:"labels" yaml:"labels"`
	FirstWins   []Pair   `json:"first_wins" yaml:"first_wins"`
	SeedDegrees []int64  `json:"seed_degrees" yaml:"seed_degrees"`
}

// TypeCount is the number of labelled types.
func (d Definition) TypeCount() int {
	return len(d.Labels)
}

// Label returns the label for x, or a numbered fallback.
func (d Definition) Label(x Type) string {
	if int(x) >= 0 && int(x) < len(d.Labels) {
		return d.Labels[x]
	}
	return fmt.Sprintf("type %d", x)
}

// Validate checks the definition without building it.
func (d Definition) Validate() error {
	_, _, err := d.Build()
	return err
}

// Build constructs the win table and a copy of the seed degrees.
func (d Definition) Build() (*WinTable, []int64, error) {
	table, err := NewWinTable(len(d.Labels), d.FirstWins)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateDegrees(table.TypeCount(), d.SeedDegrees); err != nil {
		return nil, nil, err
	}
	seed := make([]int64, table.TypeCount())
	copy(seed, d.SeedDegrees)
	return table, seed, nil
}

// ValidateDegrees checks an initial degree state for typeCount types: at
// least typeCount entries, none negative, and a positive total over the
// first typeCount entries.
func ValidateDegrees(typeCount int, degrees []int64) error {
	if len(degrees) < typeCount {
		return Configf("seed_degrees", "have %d entries, need %d", len(degrees), typeCount)
	}
	var total int64
	for i, d := range degrees[:typeCount] {
		if d < 0 {
			return Configf("seed_degrees", "entry %d is negative (%d)", i, d)
		}
		total += d
	}
	if total <= 0 {
		return Configf("seed_degrees", "total degree must be positive")
	}
	return nil
}

var presets = map[string]Definition{
	"rps": {
		Name:   "rock-paper-scissors",
		Labels: []string{"rock", "paper", "scissors"},
		FirstWins: []Pair{
			{0, 0}, {1, 1}, {2, 2},
			{0, 2}, {1, 0}, {2, 1},
		},
		SeedDegrees: []int64{2, 2, 2},
	},
	"rpsls": {
		Name:   "rock-paper-scissors-lizard-spock",
		Labels: []string{"rock", "paper", "scissors", "lizard", "spock"},
		FirstWins: []Pair{
			{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4},
			{0, 2}, {0, 3},
			{1, 0}, {1, 4},
			{2, 1}, {2, 3},
			{3, 1}, {3, 4},
			{4, 0}, {4, 2},
		},
		SeedDegrees: []int64{2, 2, 2, 2, 2},
	},
}

// DefaultPreset is the model used when nothing else is configured.
const DefaultPreset = "rps"

// Preset returns a copy of a built-in definition.
func Preset(name string) (Definition, error) {
	d, ok := presets[name]
	if !ok {
		return Definition{}, Configf("preset", "unknown preset %q (valid: %v)", name, PresetNames())
	}
	return d.clone(), nil
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Definition) clone() Definition {
	out := Definition{Name: d.Name}
	out.Labels = append([]string(nil), d.Labels...)
	out.FirstWins = append([]Pair(nil), d.FirstWins...)
	out.SeedDegrees = append([]int64(nil), d.SeedDegrees...)
	return out
}
