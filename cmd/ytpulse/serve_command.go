package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytpulse/internal/daemon"
	"ytpulse/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP streaming API in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if err := cfg.RequireYouTube(); err != nil {
				logging.WarnWithContext(logger, "youtube credentials missing", "config_incomplete",
					logging.Error(err),
					logging.Impact("comment jobs will fail until a key is configured"),
				)
			}

			runner, err := ctx.newRunner(logger)
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, runner, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return d.Run(runCtx)
		},
	}
}
