// Package constants provides named constants used throughout prefgrow.
// This centralizes defaults that are shared by the CLI, config, and MCP
// server.
package constants

// Run defaults, matching the reference rock-paper-scissors experiment.
const (
	// DefaultSteps is the number of growth steps when none is configured.
	DefaultSteps = 10000

	// DefaultRecordingInterval is the snapshot period when none is configured.
	DefaultRecordingInterval = 1000

	// MaxMCPSteps caps steps requested through the MCP server so a single
	// tool call cannot monopolize the process.
	MaxMCPSteps = 10_000_000
)

// Output defaults.
const (
	// DefaultTitle is the chart title when none is configured.
	DefaultTitle = "Results for rock-paper-scissors m=2 preferential attachment"

	// DefaultOutputBase is the file name stem for rendered output.
	DefaultOutputBase = "rps_attachment_results"

	// MinTickPower is the smallest power of ten labelled on the chart's
	// step axis (10^3 = 1,000).
	MinTickPower = 3
)

// Filesystem layout.
const (
	// ConfigDirName is the per-user directory under $HOME.
	ConfigDirName = ".prefgrow"

	// ConfigFileName is the YAML config file inside ConfigDirName.
	ConfigFileName = "config.yaml"

	// StoreFileName is the SQLite run store inside ConfigDirName.
	StoreFileName = "runs.db"
)

// Store limits.
const (
	// DefaultListLimit is how many runs `runs list` shows by default.
	DefaultListLimit = 20
)
