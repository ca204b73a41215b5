package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Run the multi-tenant HTTP API. Analyses are archived when a storage driver is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := d.build(ctx, true)
			if err != nil {
				return err
			}
			defer app.Close()
			defer func() { _ = app.Logger.Sync() }()
			return app.Serve(ctx)
		},
	}
}
