package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/prefgrow/internal/model"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var defs []model.Definition
			for _, name := range model.PresetNames() {
				def, err := model.Preset(name)
				if err != nil {
					return err
				}
				defs = append(defs, def)
			}

			if jsonOutput(cmd) {
				presets := make(map[string]model.Definition, len(defs))
				for i, name := range model.PresetNames() {
					presets[name] = defs[i]
				}
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"default": model.DefaultPreset,
					"presets": presets,
				})
			}

			w := cmd.OutOrStdout()
			for i, name := range model.PresetNames() {
				def := defs[i]
				marker := ""
				if name == model.DefaultPreset {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s: %s\n", name, marker, def.Name)
				fmt.Fprintf(w, "  types: %s\n", strings.Join(def.Labels, ", "))
				fmt.Fprintf(w, "  seed degrees: %v\n", def.SeedDegrees)
				fmt.Fprintf(w, "  beats:\n")
				for _, p := range def.FirstWins {
					if p.First == p.Second {
						continue
					}
					fmt.Fprintf(w, "    %s beats %s\n", def.Label(p.First), def.Label(p.Second))
				}
			}
			return nil
		},
	}
}
