package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/internal/metrics"
	"github.com/matzehuels/gmplayout/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes generation, compliance checks, room placement and the layout
store over HTTP. Layouts are kept in the configured store backend (file,
memory or MongoDB) and results in the configured cache (file or Redis).
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			opts := server.Options{
				Logger:         logger,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			}
			if !noMetrics {
				m := metrics.New()
				m.Install()
				opts.Metrics = m.Handler()
			}

			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()
			opts.Runner = runner

			st, err := cfg.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			opts.Store = st

			logger.Info("Starting server", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
			return server.New(opts).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}
