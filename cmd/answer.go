package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <question> <value>",
	Short: "Save one answer",
	Long: `Save one answer for the subject. The question may be its id or analytics
key. The value is parsed as JSON; anything that is not valid JSON is saved
as a string.`,
	Example: `  dreamcensus answer birth_year 1990
  dreamcensus answer q-recall-freq 4
  dreamcensus answer q-content-elements '["water","flying"]'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := localDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Service.SaveAnswer(cmd.Context(), args[0], rawValue(args[1]))
		if err != nil {
			return err
		}
		if !res.Valid {
			return fmt.Errorf("answer rejected: %s", res.Error)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[0])
		return nil
	},
}

func rawValue(arg string) json.RawMessage {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	b, _ := json.Marshal(arg)
	return b
}

var submitCmd = &cobra.Command{
	Use:   "submit <file|->",
	Short: "Submit a JSON object of answers in one batch",
	Long: `Submit a JSON object mapping question ids or analytics keys to values.
Unknown keys are dropped and reported. Pass - to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		var answers map[string]json.RawMessage
		if err := json.Unmarshal(data, &answers); err != nil {
			return fmt.Errorf("parse answers: %w", err)
		}
		if len(answers) == 0 {
			return errors.New("no answers to submit")
		}

		d, err := localDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Service.Submit(cmd.Context(), answers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stored %s in session %s (%s)\n", plural(res.Stored, "answer"), res.Session.ID, res.Session.Status)
		for _, k := range res.Dropped {
			fmt.Fprintf(out, "  dropped %s\n", k)
		}
		return nil
	},
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	return data, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the subject's answers keyed by analytics key",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := localDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		out, err := d.Service.ExportAnswers(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}
