package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andiamooltre/oltreweb/internal/config"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conf, errConfig := config.Read(configFile)
			if errConfig != nil {
				return errConfig
			}

			app := NewApp(conf)
			defer app.Close()

			if errInit := app.Init(ctx); errInit != nil {
				return errInit
			}

			if errServe := app.Serve(ctx); errServe != nil {
				slog.Error("Service returned error", log.ErrAttr(errServe))

				return errServe
			}

			slog.Info("Exiting")

			return nil
		},
	}
}
