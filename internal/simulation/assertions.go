package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/prefgrow/internal/growth"
)

// AssertConservation asserts that every step added exactly growth.StepMass
// to the total degree.
func AssertConservation(t *testing.T, result Result) {
	t.Helper()
	totals := result.Totals()
	for i := 1; i < len(totals); i++ {
		if totals[i]-totals[i-1] != growth.StepMass {
			t.Errorf("AssertConservation: step %d: total went %d -> %d (want +%d)", i-1, totals[i-1], totals[i], growth.StepMass)
		}
	}
}

// AssertMonotonic asserts that no type's degree ever decreased.
func AssertMonotonic(t *testing.T, result Result) {
	t.Helper()
	for i := 1; i < len(result.Trajectory); i++ {
		prev, cur := result.Trajectory[i-1], result.Trajectory[i]
		for k := range cur {
			if cur[k] < prev[k] {
				t.Errorf("AssertMonotonic: step %d: type %d went %d -> %d", i-1, k, prev[k], cur[k])
			}
		}
	}
}

// AssertNormalized asserts that every recorded snapshot has non-negative
// proportions summing to 1 within tol.
func AssertNormalized(t *testing.T, series *Series, tol float64) {
	t.Helper()
	check := func(label string, props []float64) {
		var sum float64
		for k, p := range props {
			if p < 0 || p > 1 {
				t.Errorf("AssertNormalized: %s: type %d proportion %.6f outside [0,1]", label, k, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > tol {
			t.Errorf("AssertNormalized: %s: proportions sum to %.12f", label, sum)
		}
	}
	check("initial", series.Initial)
	for _, p := range series.Points {
		check("point", p.Proportions)
	}
}

// AssertRecordedAt asserts the exact step indices of the recorded points.
func AssertRecordedAt(t *testing.T, series *Series, steps ...int64) {
	t.Helper()
	if len(series.Points) != len(steps) {
		t.Fatalf("AssertRecordedAt: got %d points, want %d", len(series.Points), len(steps))
	}
	for i, want := range steps {
		if series.Points[i].Step != want {
			t.Errorf("AssertRecordedAt: point %d at step %d, want %d", i, series.Points[i].Step, want)
		}
	}
}

// AssertTrajectoriesEqual asserts that two runs went through identical
// degree states and recorded identical snapshots.
func AssertTrajectoriesEqual(t *testing.T, a, b Result) {
	t.Helper()
	if len(a.Trajectory) != len(b.Trajectory) {
		t.Fatalf("AssertTrajectoriesEqual: lengths differ: %d vs %d", len(a.Trajectory), len(b.Trajectory))
	}
	for i := range a.Trajectory {
		for k := range a.Trajectory[i] {
			if a.Trajectory[i][k] != b.Trajectory[i][k] {
				t.Fatalf("AssertTrajectoriesEqual: entry %d type %d: %d vs %d", i, k, a.Trajectory[i][k], b.Trajectory[i][k])
			}
		}
	}
	if len(a.Series.Points) != len(b.Series.Points) {
		t.Fatalf("AssertTrajectoriesEqual: point counts differ: %d vs %d", len(a.Series.Points), len(b.Series.Points))
	}
	for i := range a.Series.Points {
		pa, pb := a.Series.Points[i], b.Series.Points[i]
		for k := range pa.Proportions {
			if pa.Proportions[k] != pb.Proportions[k] {
				t.Errorf("AssertTrajectoriesEqual: point %d type %d: %v vs %v", i, k, pa.Proportions[k], pb.Proportions[k])
			}
		}
	}
}
