package cmd

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/natewolfe/dreamcensus-sub001/internal/config"
	"github.com/natewolfe/dreamcensus-sub001/internal/store"
)

// cfg is loaded before every command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "dreamcensus",
	Short: "The Dream Census",
	Long:  "dreamcensus collects answers to the Dream Census questionnaire in the terminal or over HTTP.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides DREAMCENSUS_DB)")
	pf.String("catalog", "", "Path to a YAML catalog (overrides DREAMCENSUS_CATALOG; default is the built-in census)")
	pf.String("subject", "", "Respondent ID for local commands (default: current OS user)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (overrides DREAMCENSUS_LOG_LEVEL)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env and DREAMCENSUS_* variables, then applies flags on
// top.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c, err := config.FromEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if p, _ := flags.GetString("db"); p != "" {
		c.DBPath = p
	}
	if p, _ := flags.GetString("catalog"); p != "" {
		c.CatalogPath = p
	}
	if l, _ := flags.GetString("log-level"); l != "" {
		c.LogLevel = l
	}
	cfg = c
	return nil
}

// resolveDBPath returns the configured database path, creating its parent
// directory, or the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// resolveSubject returns --subject, falling back to the OS user name.
func resolveSubject(cmd *cobra.Command) (string, error) {
	if s, _ := cmd.Flags().GetString("subject"); s != "" {
		return s, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve subject: %w (pass --subject)", err)
	}
	return u.Username, nil
}
