package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"ytpulse/internal/events"
	"ytpulse/internal/translate"
)

// translationCollector keeps translated chunks while forwarding every event.
type translationCollector struct {
	next events.Emitter

	mu           sync.Mutex
	translations []events.Translation
}

func (c *translationCollector) Emit(e events.Event) error {
	if list, ok := e.Data.([]events.Translation); ok && e.Type == events.TypeTranslated {
		c.mu.Lock()
		c.translations = append(c.translations, list...)
		c.mu.Unlock()
	}
	return c.next.Emit(e)
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var output string

	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate a saved comment list (use - for stdin)",
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

			stdout := cmd.OutOrStdout()
			raw := jsonOut || !isTerminal(stdout)
			var sink events.Emitter = newProgressPrinter(cmd.ErrOrStderr())
			if raw {
				sink = events.NewNDJSONWriter(stdout)
			}
			collector := &translationCollector{next: sink}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := runner.Translate(runCtx, list, collector); err != nil {
				return err
			}

			translated := translate.Apply(list, collector.translations)
			if output != "" {
				if err := writeJSONFile(output, translated); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d translated comments to %s\n", len(translated), output)
			}
			if !raw {
				fmt.Fprintln(stdout, renderCommentTable(translated))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write the NDJSON event stream to stdout")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the translated comment list to this JSON file")
	return cmd
}
