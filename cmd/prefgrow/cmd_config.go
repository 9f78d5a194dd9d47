package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/prefgrow/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect prefgrow configuration",
		Long: `View and check prefgrow configuration settings.

Configuration is read from ~/.prefgrow/config.yaml (or --config) and then
overridden by PREFGROW_* environment variables.

Examples:
  prefgrow config show                 # Effective settings as YAML
  prefgrow config validate             # Check the settings resolve`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigValidateCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# %s (with PREFGROW_* overrides)\n", configPathOrDefault(cmd))
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and resolve the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				if jsonOutput(cmd) {
					_ = writeJSON(cmd.OutOrStdout(), map[string]interface{}{"valid": false, "error": err.Error()})
				}
				return fmt.Errorf("invalid configuration: %w", err)
			}
			def, err := cfg.Model.Definition()
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"valid": true,
					"model": def.Name,
					"types": def.TypeCount(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK: model %s with %d types\n", def.Name, def.TypeCount())
			return nil
		},
	}
}

// configPathOrDefault reports which file the settings were read from.
func configPathOrDefault(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "(none)"
	}
	return path
}
