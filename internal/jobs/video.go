package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/jobgate"
	"ytpulse/internal/logging"
	"ytpulse/internal/services"
	"ytpulse/internal/services/youtube"
	"ytpulse/internal/summary"
	"ytpulse/internal/translate"
)

// StageComplete labels the final progress event of every job.
const StageComplete = "complete"

// VideoRequest describes a whole-video job. An empty Strategy skips the
// summary stage.
type VideoRequest struct {
	VideoID   string
	UserID    string
	Translate bool
	Strategy  string
}

// TranslateTotals is the completion payload of a translation run.
type TranslateTotals struct {
	TotalTranslated int `json:"totalTranslated"`
	SuccessCount    int `json:"successCount"`
	FailedBatches   int `json:"failedBatches"`
}

// VideoResult is the completion payload of a video job.
type VideoResult struct {
	JobID         string             `json:"jobId"`
	TotalComments int                `json:"totalComments"`
	TotalFetched  int                `json:"totalFetched"`
	Pages         int                `json:"pages"`
	Truncated     bool               `json:"truncated"`
	Partial       bool               `json:"partial"`
	VideoInfo     comments.VideoInfo `json:"videoInfo"`
	Stats         comments.Stats     `json:"stats"`
	Translated    *TranslateTotals   `json:"translated,omitempty"`
	Summary       *summary.Summary   `json:"summary,omitempty"`
	Comments      []comments.Comment `json:"-"`
}

// VideoJob is an admitted video job holding a gate slot until it finishes.
type VideoJob struct {
	ID       string
	runner   *Runner
	req      VideoRequest
	strategy summary.Strategy
	release  func()
	runOnce  sync.Once
}

// StartVideo validates req and claims a gate slot. It returns a *BusyError
// when the gate is full.
func (r *Runner) StartVideo(req VideoRequest) (*VideoJob, error) {
	videoID, ok := comments.ExtractVideoID(req.VideoID)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "collect", "parse video id", "not a YouTube video id or url", nil)
	}
	req.VideoID = videoID
	var strategy summary.Strategy
	if strings.TrimSpace(req.Strategy) != "" {
		s, err := summary.ParseStrategy(req.Strategy)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "summarize", "parse strategy", "", err)
		}
		strategy = s
	}
	if r.sourceErr != nil {
		return nil, configurationError("collect", r.sourceErr)
	}
	if req.Translate && r.translateErr != nil {
		return nil, configurationError("translate", r.translateErr)
	}
	if strategy != "" && r.summaryErr != nil {
		return nil, configurationError("summarize", r.summaryErr)
	}

	id := jobgate.NewJobID(req.UserID, videoID)
	release, ok := r.gate.Acquire(id)
	if !ok {
		r.rejected.Add(1)
		status := r.gate.Status()
		r.logger.Info("video job rejected",
			logging.String(logging.FieldEventType, "job_rejected"),
			logging.VideoID(videoID),
			logging.Int("active", status.ActiveCount),
		)
		return nil, &BusyError{Active: status, RetryAfter: r.retryAfter}
	}
	r.started.Add(1)
	return &VideoJob{ID: id, runner: r, req: req, strategy: strategy, release: release}, nil
}

// Release frees the gate slot of a job that will not be run.
func (j *VideoJob) Release() {
	j.release()
}

// Run executes collect, then the optional translate and summarize stages,
// and emits exactly one terminal event to out. The gate slot is released
// before Run returns. A job runs at most once.
func (j *VideoJob) Run(ctx context.Context, out events.Emitter) (VideoResult, error) {
	err := errors.New("video job already ran")
	var result VideoResult
	j.runOnce.Do(func() {
		defer j.release()
		result, err = j.run(ctx, out)
	})
	return result, err
}

func (j *VideoJob) run(ctx context.Context, out events.Emitter) (VideoResult, error) {
	r := j.runner
	ctx = logging.WithJobID(ctx, j.ID)
	logger := logging.WithContext(ctx, r.logger).With(logging.VideoID(j.req.VideoID))
	stream := events.NewStream(ctx, progressLogger(out, logger))
	logger.Info("video job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.Bool("translate", j.req.Translate),
		logging.String("strategy", string(j.strategy)),
	)

	collected, err := r.collector.Run(ctx, j.req.VideoID, stream)
	if err != nil {
		return VideoResult{}, j.fail(ctx, stream, logger, classifyCollectError(err))
	}
	result := VideoResult{
		JobID:         j.ID,
		TotalComments: len(collected.Comments),
		TotalFetched:  collected.TotalFetched,
		Pages:         collected.Pages,
		Truncated:     collected.Truncated,
		Partial:       collected.Partial,
		VideoInfo:     collected.VideoInfo,
		Stats:         comments.ComputeStats(collected.Comments),
		Comments:      collected.Comments,
	}

	if j.req.Translate {
		tr, err := r.translator.Run(ctx, result.Comments, stream.Within(75, 90))
		if err != nil {
			return result, j.fail(ctx, stream, logger, err)
		}
		result.Comments = translate.Apply(result.Comments, tr.Translations)
		result.Translated = &TranslateTotals{
			TotalTranslated: len(tr.Translations),
			SuccessCount:    tr.SuccessCount,
			FailedBatches:   tr.FailedBatches,
		}
	}

	if j.strategy != "" {
		report, err := r.summarizer.Run(ctx, result.Comments, j.strategy, stream.Within(90, 100))
		switch {
		case errors.Is(err, summary.ErrNoComments):
			stream.Warn(events.ErrorData{Message: "summary skipped: " + err.Error()})
		case err != nil:
			return result, j.fail(ctx, stream, logger, err)
		default:
			result.Summary = &report
		}
	}

	stream.Progress(StageComplete, 100, result.TotalComments, result.TotalComments)
	stream.Complete(result)
	r.completed.Add(1)
	logger.Info("video job finished",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Int("comments", result.TotalComments),
		logging.Bool("partial", result.Partial),
	)
	return result, nil
}

func (j *VideoJob) fail(ctx context.Context, stream *events.Stream, logger *slog.Logger, err error) error {
	j.runner.failed.Add(1)
	if ctx.Err() != nil {
		logger.Info("video job cancelled", logging.String(logging.FieldEventType, "job_cancelled"))
		return ctx.Err()
	}
	stream.Fail(err)
	logging.ErrorWithContext(logger, "video job failed", "job_failed", logging.Error(err))
	return err
}

// classifyCollectError tags collector failures for the transports.
func classifyCollectError(err error) error {
	if errors.Is(err, youtube.ErrVideoNotFound) {
		return services.Wrap(services.ErrNotFound, "collect", "fetch video info", "", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrUpstream, "collect", "", "", err)
}

// progressLogger mirrors sampled progress events into the job log.
func progressLogger(out events.Emitter, logger *slog.Logger) events.Emitter {
	if out == nil {
		out = events.Discard
	}
	sampler := logging.NewProgressSampler(5)
	return events.EmitterFunc(func(e events.Event) error {
		if p, ok := e.Data.(events.Progress); ok && e.Type == events.TypeProgress {
			if sampler.ShouldLog(p.Percentage, p.Stage) {
				logger.Debug("job progress",
					logging.String(logging.FieldStage, p.Stage),
					logging.Float64("percent", p.Percentage),
					logging.Int("current", p.Current),
					logging.Int("total", p.Total),
				)
			}
		}
		return out.Emit(e)
	})
}
