package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
)

// localDeps opens the engine for the subject named on the command line.
func localDeps(cmd *cobra.Command) (*deps, error) {
	subject, err := resolveSubject(cmd)
	if err != nil {
		return nil, err
	}
	return openDeps(cmd.Context(), census.StaticIdentity(subject), cmd.ErrOrStderr())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
