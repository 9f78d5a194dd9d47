// Package simulation drives a growth engine for a fixed number of steps and
// records periodic snapshots of the type proportions as a Series.
//
// Run is the production driver used by the CLI and the MCP server. The
// package also carries a test harness: Scenario and Runner execute a run
// while capturing the full degree trajectory, and the Assert helpers check
// the properties every run must satisfy (conservation, monotonicity,
// normalization, determinism).
//
// Usage:
//
//	func TestRPSConservation(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:              "rps-conservation",
//	        Steps:             1000,
//	        RecordingInterval: 100,
//	        Seed:              7,
//	    })
//	    simulation.AssertConservation(t, result)
//	}
package simulation
