// Package growth implements preferential-attachment growth over typed
// vertices. The engine keeps only the aggregate degree-mass per type: each
// step attaches a new vertex to two parents drawn proportionally to
// degree-mass, and the new vertex takes the type of whichever parent wins
// under the model's win table.
package growth

import (
	"github.com/nvandessel/prefgrow/internal/model"
)

// Degree added by one step: one edge on each parent plus the new vertex's
// two edges.
const (
	parentGain = 1
	childGain  = 2

	// StepMass is the total degree-mass added by a single step.
	StepMass = 2*parentGain + childGain
)

// Outcome describes one completed growth step.
type Outcome struct {
	Index  int64      `json:"index"`
	First  model.Type `json:"first"`
	Second model.Type `json:"second"`
	Winner model.Type `json:"winner"`
}

// Engine owns the degree state of one simulation run. It is not safe for
// concurrent use.
type Engine struct {
	table   *model.WinTable
	degrees []int64
	total   int64
	steps   int64
	rng     Source
}

// NewEngine creates an engine over table starting from initial degrees.
// Only the first table.TypeCount() entries of initial are used; they are
// copied.
func NewEngine(table *model.WinTable, initial []int64, src Source) (*Engine, error) {
	if table == nil {
		return nil, model.Configf("win_table", "is required")
	}
	if src == nil {
		return nil, model.Configf("source", "random source is required")
	}
	n := table.TypeCount()
	if err := model.ValidateDegrees(n, initial); err != nil {
		return nil, err
	}

	degrees := make([]int64, n)
	var total int64
	for i := range degrees {
		degrees[i] = initial[i]
		total += initial[i]
	}

	return &Engine{
		table:   table,
		degrees: degrees,
		total:   total,
		rng:     src,
	}, nil
}

// SelectParent draws a type with probability proportional to its
// degree-mass. The range [0, total) is split into consecutive intervals
// sized by each type's mass in index order; the type whose interval holds
// the draw is returned, so a type with zero mass is never chosen.
func (e *Engine) SelectParent() (model.Type, error) {
	if e.total <= 0 {
		return 0, &model.InvariantViolation{Op: "select parent", Reason: "total degree is not positive"}
	}
	r := e.rng.Int64N(e.total)
	var upper int64
	for k, d := range e.degrees {
		upper += d
		if r < upper {
			return model.Type(k), nil
		}
	}
	return 0, &model.InvariantViolation{Op: "select parent", Reason: "draw fell outside the degree range"}
}

// Step grows the network by one vertex.
//
// Parents are drawn independently and may share a type. Each parent type
// gains one unit and the winning type gains two more, so when both parents
// share a type that type gains all four units.
func (e *Engine) Step() (Outcome, error) {
	first, err := e.SelectParent()
	if err != nil {
		return Outcome{}, err
	}
	second, err := e.SelectParent()
	if err != nil {
		return Outcome{}, err
	}

	e.degrees[first] += parentGain
	e.degrees[second] += parentGain

	winner := e.table.Winner(first, second)
	e.degrees[winner] += childGain

	e.total += StepMass
	out := Outcome{Index: e.steps, First: first, Second: second, Winner: winner}
	e.steps++
	return out, nil
}

// Degrees returns a copy of the per-type degree-mass.
func (e *Engine) Degrees() []int64 {
	out := make([]int64, len(e.degrees))
	copy(out, e.degrees)
	return out
}

// TotalDegree returns the sum of all degree-mass.
func (e *Engine) TotalDegree() int64 {
	return e.total
}

// Steps returns the number of completed steps.
func (e *Engine) Steps() int64 {
	return e.steps
}

// TypeCount returns the number of types.
func (e *Engine) TypeCount() int {
	return len(e.degrees)
}

// Table returns the win table the engine resolves parents with.
func (e *Engine) Table() *model.WinTable {
	return e.table
}
