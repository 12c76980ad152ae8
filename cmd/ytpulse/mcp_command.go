package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytpulse/internal/mcptools"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve comment summaries to MCP clients over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

stdout carries the protocol, so logs go to stderr and the log directory only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			runner, err := ctx.newRunner(logger)
			if err != nil {
				return err
			}
			server := mcptools.NewServer(runner, version, logger)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcptools.Serve(runCtx, server)
		},
	}
}
