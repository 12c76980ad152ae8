package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/jobs"
)

// collectFile is the --output document; it keeps the comment list the
// stream payload omits.
type collectFile struct {
	jobs.VideoResult
	Comments []comments.Comment `json:"comments"`
}

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var translateFlag bool
	var strategy string
	var jsonOut bool
	var output string

	cmd := &cobra.Command{
		Use:   "collect <url|id>",
		Short: "Collect a video's comments, optionally translating and summarizing them",
		Long: `Collect every comment of a YouTube video.

On a terminal progress is drawn on stderr and a report is printed when the
run finishes. With --json, or when stdout is not a terminal, the raw NDJSON
event stream is written to stdout instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner(ctx.quietLogger())
			if err != nil {
				return err
			}
			job, err := runner.StartVideo(jobs.VideoRequest{
				VideoID:   args[0],
				UserID:    "cli",
				Translate: translateFlag,
				Strategy:  strategy,
			})
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			raw := jsonOut || !isTerminal(stdout)
			var emitter events.Emitter = newProgressPrinter(cmd.ErrOrStderr())
			if raw {
				emitter = events.NewNDJSONWriter(stdout)
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			result, err := job.Run(runCtx, emitter)
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeJSONFile(output, collectFile{VideoResult: result, Comments: result.Comments}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d comments to %s\n", len(result.Comments), output)
			}
			if !raw {
				renderVideo(stdout, result, shouldColorize(stdout))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&translateFlag, "translate", "t", false, "Translate comments into the configured language")
	cmd.Flags().StringVarP(&strategy, "summarize", "s", "", "Summarize with a strategy (full, popular, recent, positive, negative, neutral, sentiment)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write the NDJSON event stream to stdout")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Also write the result and comment list to this JSON file")
	return cmd
}
