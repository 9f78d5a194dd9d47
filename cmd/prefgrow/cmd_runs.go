package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/prefgrow/internal/backup"
	"github.com/nvandessel/prefgrow/internal/constants"
	"github.com/nvandessel/prefgrow/internal/model"
	"github.com/nvandessel/prefgrow/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored simulation runs",
		Long: `List, show, and delete runs saved with 'prefgrow run --save'.

The run store lives at ~/.prefgrow/runs.db unless store.path is configured.`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsDeleteCmd(),
		newRunsExportCmd(),
		newRunsImportCmd(),
	)
	return cmd
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMODEL\tSTEPS\tPOINTS\tSEED\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
					r.ID, r.Name, r.Steps, r.Points, r.Seed, r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("limit", constants.DefaultListLimit, "Maximum number of runs to list")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), run)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run:      %s\n", run.ID)
			fmt.Fprintf(w, "Model:    %s\n", run.Definition.Name)
			if run.Title != "" {
				fmt.Fprintf(w, "Title:    %s\n", run.Title)
			}
			fmt.Fprintf(w, "Created:  %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Seed:     %d\n", run.Seed)
			fmt.Fprintf(w, "Steps:    %d (recorded every %d, %d points)\n",
				run.Series.Steps, run.Series.RecordingInterval, len(run.Series.Points))
			fmt.Fprintf(w, "Elapsed:  %s\n", run.Series.Elapsed)
			fmt.Fprintln(w)
			for k, p := range run.Series.Final {
				fmt.Fprintf(w, "  %-10s %.4f  (degree %d)\n", run.Definition.Label(model.Type(k)), p, run.Series.FinalDegrees[k])
			}
			return nil
		},
	}
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				return fmt.Errorf("delete run: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "deleted", "id": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// loadRun fetches a stored run by ID.
func loadRun(cmd *cobra.Command, id string) (*store.Run, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, fmt.Errorf("load run: %w", err)
	}
	return run, nil
}

func newRunsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export all stored runs to a checksummed archive",
		Long: `Write every stored run to a compressed archive.

Without a path, a timestamped archive is written to ~/.prefgrow/backups/ and
only the newest --keep archives there are retained.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetInt("keep")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			path := ""
			rotateDir := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				dir, err := backup.DefaultDir()
				if err != nil {
					return err
				}
				path = backup.GeneratePath(dir, time.Now())
				rotateDir = dir
			}

			archive, err := backup.Export(cmd.Context(), s, path)
			if err != nil {
				return fmt.Errorf("export runs: %w", err)
			}
			if rotateDir != "" && keep > 0 {
				if err := backup.Rotate(rotateDir, keep); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"path": path,
					"runs": len(archive.Runs),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d runs to %s\n", len(archive.Runs), path)
			return nil
		},
	}
	cmd.Flags().Int("keep", 10, "Archives to keep in the default backup directory")
	return cmd
}

func newRunsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import runs from an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			replace, _ := cmd.Flags().GetBool("replace")
			mode := backup.ImportMerge
			if replace {
				mode = backup.ImportReplace
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := backup.Import(cmd.Context(), s, args[0], mode)
			if err != nil {
				return fmt.Errorf("import runs: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d runs (%d skipped, %d replaced)\n",
				result.Imported, result.Skipped, result.Replaced)
			return nil
		},
	}
	cmd.Flags().Bool("replace", false, "Overwrite runs that already exist")
	return cmd
}
