package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/natewolfe/dreamcensus-sub001/internal/api"
	"github.com/natewolfe/dreamcensus-sub001/internal/census"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the census over HTTP",
	Long: `Serve the census JSON API. Each request names its respondent in the
X-Subject-ID header; prometheus metrics are exposed at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := openDeps(ctx, census.ContextIdentity{}, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		return api.NewServer(d.Service, d.Logger).ListenAndServe(ctx, cfg.HTTPAddr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides DREAMCENSUS_HTTP_ADDR)")
}
