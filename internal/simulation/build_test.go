package simulation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nvandessel/prefgrow/internal/model"
)

func TestResolveSeed(t *testing.T) {
	if got := ResolveSeed(42); got != 42 {
		t.Errorf("ResolveSeed(42) = %d", got)
	}
	if got := ResolveSeed(0); got == 0 {
		t.Error("ResolveSeed(0) must derive a non-zero seed")
	}
}

func TestNewEngine(t *testing.T) {
	def, err := model.Preset("rpsls")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	eng, err := NewEngine(def, 7)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if eng.TypeCount() != 5 {
		t.Errorf("TypeCount = %d, want 5", eng.TypeCount())
	}
	if want := []int64{2, 2, 2, 2, 2}; !reflect.DeepEqual(eng.Degrees(), want) {
		t.Errorf("Degrees = %v, want %v", eng.Degrees(), want)
	}
}

func TestNewEngine_InvalidDefinition(t *testing.T) {
	def := model.Definition{Labels: []string{"a", "b"}, SeedDegrees: []int64{0, 0}}
	_, err := NewEngine(def, 1)
	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
}
