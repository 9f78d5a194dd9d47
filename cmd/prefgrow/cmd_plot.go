package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/prefgrow/internal/sanitize"
	"github.com/nvandessel/prefgrow/internal/visualization"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot <id>",
		Short: "Render a stored run",
		Long: `Re-render a run saved with 'prefgrow run --save'.

With --out the chart is written to <out>/<base>.<format>; otherwise it is
printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			outDir, _ := cmd.Flags().GetString("out")
			base, _ := cmd.Flags().GetString("base")
			title, _ := cmd.Flags().GetString("title")
			open, _ := cmd.Flags().GetBool("open")

			format, err := visualization.ParseFormat(formatName)
			if err != nil {
				return err
			}

			run, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				title = sanitize.Title(title)
			} else {
				title = run.Title
			}
			chart := visualization.Chart{Title: title, Series: run.Series}

			if outDir == "" {
				return visualization.Render(cmd.OutOrStdout(), format, chart)
			}

			base = sanitize.FileBase(base)
			if base == "" {
				base = run.ID
			}
			path := visualization.FileName(outDir, base, format)
			if _, err := renderFiles(outDir, base, []visualization.Format{format}, chart); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			if open && format == visualization.FormatSVG {
				if err := visualization.OpenFile(path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Could not open chart: %v\nOpen %s manually.\n", err, path)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("format", "svg", "Output format: svg, csv, or json")
	cmd.Flags().StringP("out", "o", "", "Output directory (default: stdout)")
	cmd.Flags().String("base", "", "Output file name stem (default: the run ID)")
	cmd.Flags().String("title", "", "Chart title (default: the stored title)")
	cmd.Flags().Bool("open", false, "Open the SVG chart when done")

	return cmd
}
