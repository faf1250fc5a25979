package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the question catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a catalog file, or the configured catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			snap *catalog.Snapshot
			err  error
		)
		if len(args) == 1 {
			snap, err = catalog.LoadFile(args[0])
		} else {
			snap, err = loadCatalog()
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s is valid: %s, %s, %s\n",
			snap.Version(),
			plural(len(snap.Themes()), "theme"),
			plural(len(snap.Groupings()), "grouping"),
			plural(len(snap.Questions()), "question"))
		return nil
	},
}

var catalogPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List the first questions of every grouping",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")
		snap, err := loadCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, g := range snap.Groupings() {
			fmt.Fprintf(out, "%s (%s)\n", g.Name, g.Slug)
			for _, q := range snap.Preview(g.ID, n) {
				req := ""
				if q.Required {
					req = " *"
				}
				fmt.Fprintf(out, "  %-10s %s%s\n", q.Kind, truncate(q.Text, 60), req)
			}
		}
		return nil
	},
}

func init() {
	catalogPreviewCmd.Flags().Int("n", 3, "Questions per grouping")
	catalogCmd.AddCommand(catalogValidateCmd, catalogPreviewCmd)
}
