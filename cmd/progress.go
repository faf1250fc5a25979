package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the subject's progress through each grouping",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := localDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		ov, err := d.Service.Overview(ctx)
		if err != nil {
			return err
		}
		core, err := d.Service.CensusProgress(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, map[string]any{"overview": ov, "census": core})
		}

		fmt.Fprintf(out, "%-20s  %9s  %5s  %s\n", "Grouping", "Answered", "%", "State")
		fmt.Fprintln(out, strings.Repeat("─", 52))
		for _, g := range ov.Groupings {
			state := "open"
			switch {
			case g.IsLocked:
				state = "locked"
			case g.IsComplete:
				state = "complete"
			}
			fmt.Fprintf(out, "%-20s  %4d/%-4d  %4d%%  %s\n", truncate(g.Name, 20), g.AnsweredCount, g.StepCount, g.Percent, state)
		}
		fmt.Fprintf(out, "\nOverall %d%%  ·  core and extended %d/%d\n", ov.Percent, core.Answered, core.Total)
		if ov.AllComplete {
			fmt.Fprintln(out, "Every grouping is complete.")
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("json", false, "Print JSON")
}
