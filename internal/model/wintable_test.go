package model

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func rpsTable(t *testing.T) *WinTable {
	t.Helper()
	d, err := Preset("rps")
	if err != nil {
		t.Fatalf("Preset(rps): %v", err)
	}
	table, _, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table
}

func TestNewWinTable_Errors(t *testing.T) {
	tests := []struct {
		name  string
		count int
		pairs []Pair
		field string
	}{
		{"zero types", 0, nil, "type_count"},
		{"negative types", -3, nil, "type_count"},
		{"first out of range", 3, []Pair{{3, 0}}, "first_wins"},
		{"second out of range", 3, []Pair{{0, 5}}, "first_wins"},
		{"negative index", 2, []Pair{{-1, 0}}, "first_wins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWinTable(tt.count, tt.pairs)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestWinTable_RPS(t *testing.T) {
	table := rpsTable(t)

	if table.TypeCount() != 3 {
		t.Fatalf("TypeCount() = %d, want 3", table.TypeCount())
	}

	want := map[Pair]bool{
		{0, 0}: true, {1, 1}: true, {2, 2}: true,
		{0, 2}: true, {1, 0}: true, {2, 1}: true,
	}
	for a := Type(0); a < 3; a++ {
		for b := Type(0); b < 3; b++ {
			got := table.FirstWins(a, b)
			if got != want[Pair{a, b}] {
				t.Errorf("FirstWins(%d,%d) = %v, want %v", a, b, got, want[Pair{a, b}])
			}
		}
	}

	// Unlisted pairs credit the second parent.
	if w := table.Winner(0, 1); w != 1 {
		t.Errorf("Winner(0,1) = %d, want 1", w)
	}
	if w := table.Winner(0, 2); w != 0 {
		t.Errorf("Winner(0,2) = %d, want 0", w)
	}
}

func TestWinTable_OutOfRangeLookup(t *testing.T) {
	table := rpsTable(t)
	if table.FirstWins(7, 0) || table.FirstWins(0, -1) {
		t.Error("out-of-range lookups must not report a first-parent win")
	}
}

func TestWinTable_PairsRoundTrip(t *testing.T) {
	pairs := []Pair{{2, 1}, {0, 0}, {0, 0}}
	table, err := NewWinTable(3, pairs)
	if err != nil {
		t.Fatalf("NewWinTable: %v", err)
	}
	got := table.Pairs()
	want := []Pair{{0, 0}, {2, 1}}
	if len(got) != len(want) {
		t.Fatalf("Pairs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pairs()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWinTable_SingleType(t *testing.T) {
	table, err := NewWinTable(1, nil)
	if err != nil {
		t.Fatalf("NewWinTable(1): %v", err)
	}
	if w := table.Winner(0, 0); w != 0 {
		t.Errorf("Winner(0,0) = %d, want 0", w)
	}
}

func TestPair_Encoding(t *testing.T) {
	var fromYAML struct {
		Pairs []Pair `yaml:"pairs"`
	}
	if err := yaml.Unmarshal([]byte("pairs: [[0, 2], [1, 0]]\n"), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(fromYAML.Pairs) != 2 || fromYAML.Pairs[0] != (Pair{0, 2}) || fromYAML.Pairs[1] != (Pair{1, 0}) {
		t.Errorf("unexpected pairs from YAML: %v", fromYAML.Pairs)
	}

	data, err := json.Marshal([]Pair{{2, 1}})
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != "[[2,1]]" {
		t.Errorf("json.Marshal = %s, want [[2,1]]", data)
	}

	var p Pair
	if err := json.Unmarshal([]byte("[1,2,3]"), &p); err == nil {
		t.Error("expected error for three-element pair")
	}
	if err := yaml.Unmarshal([]byte("[4]"), &p); err == nil {
		t.Error("expected error for one-element pair")
	}
}
