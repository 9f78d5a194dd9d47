package growth

import "github.com/nvandessel/prefgrow/internal/model"

// Snapshot is the normalized degree share of every type at a point in the
// run. Proportions are aligned with type index.
type Snapshot struct {
	Steps       int64     `json:"steps"`
	Proportions []float64 `json:"proportions"`
}

// Snapshot captures the current proportions without mutating state.
func (e *Engine) Snapshot() (Snapshot, error) {
	if e.total <= 0 {
		return Snapshot{}, &model.InvariantViolation{Op: "snapshot", Reason: "total degree is not positive"}
	}
	props := make([]float64, len(e.degrees))
	total := float64(e.total)
	for i, d := range e.degrees {
		props[i] = float64(d) / total
	}
	return Snapshot{Steps: e.steps, Proportions: props}, nil
}

// Sum returns the total of the proportions, 1.0 up to rounding.
func (s Snapshot) Sum() float64 {
	var sum float64
	for _, p := range s.Proportions {
		sum += p
	}
	return sum
}

// Leader returns the type with the largest share; ties go to the lower
// index.
func (s Snapshot) Leader() model.Type {
	best := 0
	for i, p := range s.Proportions {
		if p > s.Proportions[best] {
			best = i
		}
	}
	return model.Type(best)
}
