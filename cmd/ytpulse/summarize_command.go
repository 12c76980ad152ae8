package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var strategy string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize a saved comment list (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := readComments(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			runner, err := ctx.newRunner(ctx.quietLogger())
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			report, err := runner.Summarize(runCtx, list, strategy)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if jsonOut || !isTerminal(stdout) {
				return writeJSON(cmd, report)
			}
			renderSummary(stdout, report, shouldColorize(stdout))
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "full", "Comment selection strategy (full, popular, recent, positive, negative, neutral, sentiment)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the summary as JSON")
	return cmd
}
