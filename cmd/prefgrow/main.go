package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/prefgrow/internal/config"
	"github.com/nvandessel/prefgrow/internal/logging"
	"github.com/nvandessel/prefgrow/internal/store"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prefgrow",
		Short: "Typed preferential-attachment growth simulator",
		Long: `prefgrow grows a network by typed preferential attachment and records
how the share of total degree held by each type evolves.

Each step draws two parents with probability proportional to their type's
degree. Both parents gain one degree, and the winner of the pair (looked up
in the model's win table) spawns a child of its type with two more.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.prefgrow/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newRunsCmd(),
		newPlotCmd(),
		newPresetsCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadConfig loads settings from --config, the default file, and the
// environment, then validates them.
func loadConfig(cmd *cobra.Command) (*config.PrefgrowConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured run store.
func openStore(cfg *config.PrefgrowConfig) (*store.SQLiteRunStore, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// newLogger builds the operational logger on stderr.
func newLogger(cmd *cobra.Command, cfg *config.PrefgrowConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

func jsonOutput(cmd *cobra.Command) bool {
	jsonOut, _ := cmd.Flags().GetBool("json")
	return jsonOut
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
