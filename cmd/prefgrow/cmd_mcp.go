package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/prefgrow/internal/constants"
	"github.com/nvandessel/prefgrow/internal/logging"
	"github.com/nvandessel/prefgrow/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve prefgrow tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: prefgrow_simulate, prefgrow_runs, prefgrow_run, prefgrow_presets.
Tool calls are audited to ~/.prefgrow/audit.jsonl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			auditDir := ""
			if home, err := os.UserHomeDir(); err == nil {
				auditDir = filepath.Join(home, constants.ConfigDirName)
			}

			// stdout carries the protocol; logs go to stderr.
			server, err := mcp.NewServer(&mcp.Config{
				Name:     "prefgrow",
				Version:  version,
				Settings: cfg,
				AuditDir: auditDir,
				Logger:   logging.NewLogger(cfg.Logging.Level, os.Stderr),
			})
			if err != nil {
				return fmt.Errorf("start MCP server: %w", err)
			}
			return server.Run(cmd.Context())
		},
	}
}
