package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/diceplan/internal/server"
	"github.com/matzehuels/diceplan/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		cacheBackend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve plan searches over HTTP until interrupted.

  GET  /healthz     liveness and build information
  POST /v1/solve    run a search
  GET  /v1/naive    naive plan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("cache") {
				cfg.Cache.Backend = cacheBackend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			runner, closeRunner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRunner()

			srv := server.New(runner, cfg.Server,
				server.WithLogger(logger),
				server.WithHooks(observability.HTTP()))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().StringVar(&cacheBackend, "cache", "", "cache backend: none, file, redis (default from config)")

	return cmd
}
