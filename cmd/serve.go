package cmd

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/mccw/internal/server"
	"github.com/oakwood-commons/mccw/pkg/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve widget instances, their forms and assets over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				if opts.run.MinLogLevel >= 0 {
					gin.SetMode(gin.ReleaseMode)
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				lgr := *logger.FromContext(ctx)
				router := server.NewRouter(server.NewHandler(a.engine, a.registry, lgr))
				return server.Run(ctx, addr, router, lgr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
