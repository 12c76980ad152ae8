package jobs

import (
	"context"
	"errors"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/logging"
	"ytpulse/internal/services"
	"ytpulse/internal/summary"
)

// Translate streams a translation of list to out and finishes with a
// TranslateTotals completion event. Translation jobs are not gated.
func (r *Runner) Translate(ctx context.Context, list []comments.Comment, out events.Emitter) error {
	if len(list) == 0 {
		return services.Wrap(services.ErrValidation, "translate", "", "comments are required", nil)
	}
	if r.translateErr != nil {
		return configurationError("translate", r.translateErr)
	}
	logger := logging.WithContext(ctx, r.logger)
	stream := events.NewStream(ctx, progressLogger(out, logger))

	result, err := r.translator.Run(ctx, list, stream)
	if err != nil {
		if ctx.Err() == nil {
			stream.Fail(err)
		}
		return err
	}
	stream.Progress(StageComplete, 100, len(list), len(list))
	stream.Complete(TranslateTotals{
		TotalTranslated: len(result.Translations),
		SuccessCount:    result.SuccessCount,
		FailedBatches:   result.FailedBatches,
	})
	return nil
}

// Summarize returns one report for list. Summarize jobs are not gated.
func (r *Runner) Summarize(ctx context.Context, list []comments.Comment, strategyName string) (summary.Summary, error) {
	if len(list) == 0 {
		return summary.Summary{}, services.Wrap(services.ErrValidation, "summarize", "", "comments are required", nil)
	}
	strategy, err := summary.ParseStrategy(strategyName)
	if err != nil {
		return summary.Summary{}, services.Wrap(services.ErrValidation, "summarize", "parse strategy", "", err)
	}
	if r.summaryErr != nil {
		return summary.Summary{}, configurationError("summarize", r.summaryErr)
	}
	report, err := r.summarizer.Run(ctx, list, strategy, events.NewStream(ctx, events.Discard))
	if errors.Is(err, summary.ErrNoComments) {
		return summary.Summary{}, services.Wrap(services.ErrValidation, "summarize", "select comments", "strategy selected no comments", err)
	}
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "summary failed", "summary_failed", logging.Error(err))
		return summary.Summary{}, err
	}
	return report, nil
}
