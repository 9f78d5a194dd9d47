// Package config provides unified configuration loading for prefgrow.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/prefgrow/internal/constants"
	"github.com/nvandessel/prefgrow/internal/model"
)

// PrefgrowConfig contains all prefgrow configuration settings.
type PrefgrowConfig struct {
	// Model selects or defines the type space and win table.
	Model ModelConfig `json:"model" yaml:"model"`

	// Run contains the driver's loop parameters.
	Run RunConfig `json:"run" yaml:"run"`

	// Output controls rendering of the finished series.
	Output OutputConfig `json:"output" yaml:"output"`

	// Store configures the SQLite run store.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational logging and step tracing.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ModelConfig names a preset and/or spells out a model. Explicit fields
// override the preset's values.
type ModelConfig struct {
	// Preset is a built-in model name ("rps", "rpsls"). Empty selects "rps"
	// unless Labels are given.
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`

	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Labels      []string     `json:"labels,omitempty" yaml:"labels,omitempty"`
	FirstWins   []model.Pair `json:"first_wins,omitempty" yaml:"first_wins,omitempty"`
	SeedDegrees []int64      `json:"seed_degrees,omitempty" yaml:"seed_degrees,omitempty"`
}

// RunConfig holds the number of steps, the recording period and the seed.
type RunConfig struct {
	Steps             int64 `json:"steps" yaml:"steps"`
	RecordingInterval int64 `json:"recording_interval" yaml:"recording_interval"`

	// Seed for the random source. 0 means derive one from the clock.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// OutputConfig configures rendered files.
type OutputConfig struct {
	// Dir is the directory rendered files are written to.
	Dir string `json:"dir" yaml:"dir"`

	// Base is the file name stem; each format adds its extension.
	Base string `json:"base" yaml:"base"`

	// Title is the chart title.
	Title string `json:"title" yaml:"title"`

	// Formats lists the output formats: "svg", "csv", "json".
	Formats []string `json:"formats" yaml:"formats"`
}

// StoreConfig configures the run store.
type StoreConfig struct {
	// Path of the SQLite database. Empty means ~/.prefgrow/runs.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures prefgrow's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" and "trace" also write a per-step trace to steps.jsonl.
	Level string `json:"level" yaml:"level"`
}

// envOverrides holds raw env values. Fields are pre-filled from the loaded
// config so unset variables keep their current values.
type envOverrides struct {
	Preset            string   `env:"PREFGROW_PRESET"`
	Steps             int64    `env:"PREFGROW_STEPS"`
	RecordingInterval int64    `env:"PREFGROW_RECORDING_INTERVAL"`
	Seed              uint64   `env:"PREFGROW_SEED"`
	OutputDir         string   `env:"PREFGROW_OUTPUT_DIR"`
	Title             string   `env:"PREFGROW_TITLE"`
	Formats           []string `env:"PREFGROW_FORMATS" envSeparator:","`
	StorePath         string   `env:"PREFGROW_STORE_PATH"`
	LogLevel          string   `env:"PREFGROW_LOG_LEVEL"`
}

// Default returns a PrefgrowConfig with sensible defaults.
func Default() *PrefgrowConfig {
	return &PrefgrowConfig{
		Run: RunConfig{
			Steps:             constants.DefaultSteps,
			RecordingInterval: constants.DefaultRecordingInterval,
		},
		Output: OutputConfig{
			Dir:     ".",
			Base:    constants.DefaultOutputBase,
			Title:   constants.DefaultTitle,
			Formats: []string{"svg"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.prefgrow/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, constants.ConfigFileName), nil
}

// Load loads configuration from path, or from the default location when
// path is empty, then applies environment variables.
// Order: defaults -> config file -> environment variables
func Load(path string) (*PrefgrowConfig, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	} else if defaultPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(defaultPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(defaultPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*PrefgrowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *PrefgrowConfig) Validate() error {
	if c.Run.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", c.Run.Steps)
	}
	if c.Run.RecordingInterval < 1 {
		return fmt.Errorf("recording_interval must be at least 1, got %d", c.Run.RecordingInterval)
	}

	validFormats := map[string]bool{"svg": true, "csv": true, "json": true}
	for _, f := range c.Output.Formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid output format: %s (valid: svg, csv, json)", f)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if _, err := c.Model.Definition(); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	return nil
}

// Definition resolves the configured model.
func (m ModelConfig) Definition() (model.Definition, error) {
	preset := m.Preset
	if preset == "" && len(m.Labels) == 0 {
		preset = model.DefaultPreset
	}

	var def model.Definition
	if preset != "" {
		var err error
		if def, err = model.Preset(preset); err != nil {
			return model.Definition{}, err
		}
	}

	if m.Name != "" {
		def.Name = m.Name
	}
	if len(m.Labels) > 0 {
		def.Labels = append([]string(nil), m.Labels...)
	}
	if m.FirstWins != nil {
		def.FirstWins = append([]model.Pair(nil), m.FirstWins...)
	}
	if len(m.SeedDegrees) > 0 {
		def.SeedDegrees = append([]int64(nil), m.SeedDegrees...)
	}
	if def.Name == "" {
		def.Name = "custom"
	}

	if err := def.Validate(); err != nil {
		return model.Definition{}, err
	}
	return def, nil
}

// StorePath returns the configured store path or ~/.prefgrow/runs.db.
func (c *PrefgrowConfig) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, constants.StoreFileName), nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *PrefgrowConfig) error {
	raw := envOverrides{
		Preset:            config.Model.Preset,
		Steps:             config.Run.Steps,
		RecordingInterval: config.Run.RecordingInterval,
		Seed:              config.Run.Seed,
		OutputDir:         config.Output.Dir,
		Title:             config.Output.Title,
		Formats:           config.Output.Formats,
		StorePath:         config.Store.Path,
		LogLevel:          config.Logging.Level,
	}
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	config.Model.Preset = raw.Preset
	config.Run.Steps = raw.Steps
	config.Run.RecordingInterval = raw.RecordingInterval
	config.Run.Seed = raw.Seed
	config.Output.Dir = raw.OutputDir
	config.Output.Title = raw.Title
	config.Output.Formats = raw.Formats
	config.Store.Path = raw.StorePath
	config.Logging.Level = raw.LogLevel
	return nil
}
