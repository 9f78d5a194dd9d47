package simulation

import "time"

// Point is one recorded snapshot. Step is the 0-based index of the step
// after which it was captured.
type Point struct {
	Step        int64     `json:"step"`
	Proportions []float64 `json:"proportions"`
}

// Completed returns the number of steps finished when the point was taken.
func (p Point) Completed() int64 {
	return p.Step + 1
}

// Series is the time series produced by a run. It is append-only while the
// run is in progress and read-only afterwards.
type Series struct {
	Labels            []string      `json:"labels,omitempty"`
	RecordingInterval int64         `json:"recording_interval"`
	Steps             int64         `json:"steps"`
	Initial           []float64     `json:"initial"`
	Points            []Point       `json:"points"`
	Final             []float64     `json:"final"`
	FinalDegrees      []int64       `json:"final_degrees"`
	Elapsed           time.Duration `json:"elapsed_ns"`
}

// TypeCount returns the number of types in the series.
func (s *Series) TypeCount() int {
	return len(s.Initial)
}

// Column returns the proportions of type k across all points.
func (s *Series) Column(k int) []float64 {
	col := make([]float64, len(s.Points))
	for i, p := range s.Points {
		if k < len(p.Proportions) {
			col[i] = p.Proportions[k]
		}
	}
	return col
}

// Label returns the label for type k, or "" when unlabelled.
func (s *Series) Label(k int) string {
	if k < len(s.Labels) {
		return s.Labels[k]
	}
	return ""
}
