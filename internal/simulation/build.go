package simulation

import (
	"time"

	"github.com/nvandessel/prefgrow/internal/growth"
	"github.com/nvandessel/prefgrow/internal/model"
)

// ResolveSeed returns seed unchanged, or a clock-derived seed when it is 0.
func ResolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	s := uint64(time.Now().UnixNano())
	if s == 0 {
		s = 1
	}
	return s
}

// NewEngine builds the win table and seed degrees from def and returns an
// engine drawing from a generator seeded with seed.
func NewEngine(def model.Definition, seed uint64) (*growth.Engine, error) {
	table, degrees, err := def.Build()
	if err != nil {
		return nil, err
	}
	return growth.NewEngine(table, degrees, growth.NewSource(seed))
}
