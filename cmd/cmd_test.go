package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a fresh database in dir and returns
// stdout. Flag values are reset afterwards since cobra keeps them between
// runs.
func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DREAMCENSUS_REDIS_URL", "")
	t.Setenv("DREAMCENSUS_CATALOG", "")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--db", filepath.Join(dir, "census.db"), "--subject", "alice"}, args...))
	t.Cleanup(func() { resetFlags(rootCmd) })

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dreamcensus "))
}

func TestAnswerAndExport(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "", "answer", "birth_year", "1990")
	require.NoError(t, err)
	assert.Equal(t, "Saved birth_year\n", out)

	_, err = execute(t, dir, "", "answer", "q-birth-year", "1800")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Minimum value is 1900")

	out, err = execute(t, dir, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"birth_year": 1990`)
}

func TestSubmitFromStdin(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, `{"birth_year": 1985, "made_up": "x"}`, "submit", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored 1 answer in session")
	assert.Contains(t, out, "(completed)")
	assert.Contains(t, out, "dropped made_up")

	_, err = execute(t, dir, `{}`, "submit", "-")
	assert.Error(t, err)
}

func TestResetNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "", "answer", "birth_year", "1990")
	require.NoError(t, err)

	_, err = execute(t, dir, "", "reset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := execute(t, dir, "", "reset", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 session\n", out)
}

func TestProgress(t *testing.T) {
	out, err := execute(t, t.TempDir(), "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "About You")
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "Overall 0%")
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "", "select", "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Question")

	_, err = execute(t, dir, "", "select", "--mode", "random")
	assert.Error(t, err)

	_, err = execute(t, dir, "", "select", "--mode", "theme-focus")
	assert.Error(t, err)

	out, err = execute(t, dir, "", "select", "--mode", "theme-focus", "--theme", "recall")
	require.NoError(t, err)
	assert.Contains(t, out, "Dream Recall:")
}

func TestCatalogValidate(t *testing.T) {
	out, err := execute(t, t.TempDir(), "", "catalog", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog 2026.1 is valid: 5 themes")

	_, err = execute(t, t.TempDir(), "", "catalog", "validate", "does-not-exist.yaml")
	assert.Error(t, err)
}
