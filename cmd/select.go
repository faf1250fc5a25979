package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/selection"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Show the next batch of questions for the subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		theme, _ := cmd.Flags().GetString("theme")
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("include-answered")
		asJSON, _ := cmd.Flags().GetBool("json")

		opts := census.SelectOptions{Mode: selection.Mode(mode), ThemeSlug: theme, Limit: limit, IncludeAnswered: all}
		switch opts.Mode {
		case selection.ModeMixed:
		case selection.ModeThemeFocus:
			if theme == "" {
				return fmt.Errorf("--theme is required with --mode %s", selection.ModeThemeFocus)
			}
		default:
			return fmt.Errorf("invalid mode %q: must be %s or %s", mode, selection.ModeMixed, selection.ModeThemeFocus)
		}

		d, err := localDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Service.SelectQuestions(cmd.Context(), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			type row struct {
				ID   string `json:"id"`
				Tier int    `json:"tier"`
				Text string `json:"text"`
			}
			rows := make([]row, 0, len(res.Questions))
			for _, q := range res.Questions {
				rows = append(rows, row{ID: q.ID, Tier: int(q.Tier), Text: q.Text})
			}
			return writeJSON(out, map[string]any{"result": res, "questions": rows})
		}

		fmt.Fprintf(out, "%-24s  %4s  %-14s  %s\n", "ID", "Tier", "Theme", "Question")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, q := range res.Questions {
			themeSlug := ""
			if th, ok := d.Service.Catalog().Theme(q.ThemeID); ok {
				themeSlug = th.Slug
			}
			fmt.Fprintf(out, "%-24s  %4d  %-14s  %s\n", q.ID, q.Tier, themeSlug, truncate(q.Text, 44))
		}
		fmt.Fprintf(out, "\n%s", plural(len(res.Questions), "question"))
		if tp := res.ThemeProgress; tp != nil {
			fmt.Fprintf(out, "  ·  %s: %d/%d answered", tp.Name, tp.Answered, tp.Total)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	selectCmd.Flags().String("mode", string(selection.ModeMixed), "Selection mode: mixed or theme-focus")
	selectCmd.Flags().String("theme", "", "Theme slug for theme-focus mode")
	selectCmd.Flags().Int("limit", 0, "Batch size (default from DREAMCENSUS_SELECT_LIMIT)")
	selectCmd.Flags().Bool("include-answered", false, "Also select questions already answered")
	selectCmd.Flags().Bool("json", false, "Print JSON")
}
