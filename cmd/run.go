package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/natewolfe/dreamcensus-sub001/internal/app"
	"github.com/natewolfe/dreamcensus-sub001/internal/census"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take the census in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the engine for the local subject and launches the TUI. Logs
// go to a file beside the database so they do not corrupt the screen.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	subject, err := resolveSubject(cmd)
	if err != nil {
		return err
	}

	dbPath, err := resolveDBPath()
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "dreamcensus.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	d, err := openDeps(ctx, census.StaticIdentity(subject), logFile)
	if err != nil {
		return err
	}
	defer d.Close()

	return app.Run(ctx, d.Service)
}
