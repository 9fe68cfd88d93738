package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clierrors "github.com/pepkit/eido/internal/errors"
	"github.com/pepkit/eido/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr         string
		allowLocal   bool
		fetchRetries int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve PEP validation over HTTP",
		Long: `Start the HTTP front-end.

Endpoints:
  GET  /healthz
  GET  /metrics
  GET  /api/v1/version
  GET  /api/v1/schemas
  GET  /api/v1/filters
  POST /api/v1/validate           multipart: config, sample_table, subsample_table, schema|schema_file
  POST /api/v1/convert/{filter}   multipart: config, sample_table, subsample_table, arg=key=value`,
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ServerAddr
			}
			if !cmd.Flags().Changed("fetch-retries") {
				fetchRetries = a.cfg.FetchRetries
			}
			if fetchRetries < 0 {
				return clierrors.NewArgumentError("--fetch-retries must not be negative")
			}
			srv := server.New(server.Config{
				Addr:              addr,
				MaxUploadBytes:    a.cfg.MaxUploadBytes(),
				SampleTableIndex:  a.cfg.SampleTableIndex,
				AllowLocalSchemas: allowLocal,
				FetchRetries:      fetchRetries,
				Logger:            a.log,
				Filters:           a.filters,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx); err != nil {
				return clierrors.Wrap(err, clierrors.Runtime, "Check that the address is free")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server_addr from config)")
	cmd.Flags().BoolVar(&allowLocal, "allow-local-schemas", false, "Let clients name schema files on this machine")
	cmd.Flags().IntVar(&fetchRetries, "fetch-retries", 0, "Retry remote schema fetches on 5xx and network errors (default: fetch_retries from config)")
	return cmd
}
