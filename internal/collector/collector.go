package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/logging"
	"ytpulse/internal/retry"
)

const (
	DefaultPageSize = 100
	DefaultMaxPages = 100

	StageVideoInfo = "fetching video info"
	StageComments  = "collecting comments"
)

// Source delivers video metadata and comment pages. Implementations make a
// single attempt per call; the collector owns retries.
type Source interface {
	FetchVideoInfo(ctx context.Context, videoID string) (comments.VideoInfo, error)
	FetchCommentPage(ctx context.Context, videoID, cursor string, pageSize int) (comments.Page, error)
}

// State tracks collector progress through a run.
type State string

const (
	StateInit              State = "init"
	StateFetchingVideoMeta State = "fetching_video_meta"
	StateCollectingPage    State = "collecting_page"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// MetadataError reports that the run could not start because video metadata
// was unavailable.
type MetadataError struct {
	VideoID string
	Err     error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("fetch video info %s: %v", e.VideoID, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// Config tunes pagination.
type Config struct {
	PageSize  int
	MaxPages  int
	PageDelay time.Duration
	Retry     retry.Policy
}

// Result summarizes a run.
type Result struct {
	VideoInfo    comments.VideoInfo
	Comments     []comments.Comment
	TotalFetched int
	Pages        int
	State        State
	Truncated    bool
	Partial      bool
}

// Collector walks the comment pages of a single video.
type Collector struct {
	source    Source
	cfg       Config
	logger    *slog.Logger
	sleeper   func(context.Context, time.Duration) error
	retryOpts []retry.Option
}

// Option customizes the collector.
type Option func(*Collector)

// WithLogger sets the collector logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper overrides the inter-page delay and retry backoff waits.
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Collector) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithRetryOptions appends options to every retried upstream call.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(c *Collector) {
		c.retryOpts = append(c.retryOpts, opts...)
	}
}

// New constructs a collector reading from source.
func New(source Source, cfg Config, opts ...Option) *Collector {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	c := &Collector{
		source:  source,
		cfg:     cfg,
		logger:  logging.NewNop(),
		sleeper: retry.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run fetches metadata then every page until the cursor runs out, MaxPages is
// reached, a page fails, or ctx is done. Events go to stream; the terminal
// event is left to the caller.
func (c *Collector) Run(ctx context.Context, videoID string, stream *events.Stream) (Result, error) {
	result := Result{State: StateInit}
	logger := logging.WithContext(ctx, c.logger).With(logging.VideoID(videoID))

	result.State = StateFetchingVideoMeta
	stream.Progress(StageVideoInfo, 0, 0, 0)
	info, err := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) (comments.VideoInfo, error) {
		return c.source.FetchVideoInfo(ctx, videoID)
	}, c.retryOptions(logger, "fetch video info")...)
	if err != nil {
		result.State = StateFailed
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, &MetadataError{VideoID: videoID, Err: err}
	}
	result.VideoInfo = info
	stream.VideoInfo(info)
	estimated := info.EstimatedComments()
	stream.Progress(StageComments, 5, 0, estimated)
	logger.Info("video metadata fetched",
		logging.String(logging.FieldEventType, "video_info"),
		logging.String("title", info.Title),
		logging.Int("estimated_comments", estimated),
	)

	cursor := ""
	for page := 1; ; page++ {
		result.State = StateCollectingPage
		pageCursor := cursor
		fetched, err := retry.Do(ctx, c.cfg.Retry, func(ctx context.Context) (comments.Page, error) {
			return c.source.FetchCommentPage(ctx, videoID, pageCursor, c.cfg.PageSize)
		}, c.retryOptions(logger.With(logging.Page(page)), "fetch comment page")...)
		if err != nil {
			if ctx.Err() != nil {
				result.State = StateFailed
				return result, ctx.Err()
			}
			result.Partial = true
			stream.Warn(events.ErrorData{
				Message: fmt.Sprintf("page %d failed: %v", page, err),
				Page:    page,
			})
			logging.WarnWithContext(logger, "comment page failed", "page_failed",
				logging.Page(page),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check youtube quota and credentials"),
			)
			break
		}

		var raw []comments.Comment
		for _, thread := range fetched.Threads {
			raw = append(raw, thread.Flatten()...)
		}
		kept := comments.Filter(raw)
		result.Pages = page
		result.TotalFetched += len(raw)
		result.Comments = append(result.Comments, kept...)
		stream.Comments(kept)
		stream.Progress(StageComments, pageProgress(result.TotalFetched, estimated), result.TotalFetched, estimated)
		logger.Debug("comment page collected",
			logging.Page(page),
			logging.Int("raw", len(raw)),
			logging.Int("kept", len(kept)),
		)

		cursor = fetched.NextCursor
		if cursor == "" {
			break
		}
		if page == c.cfg.MaxPages {
			result.Truncated = true
			logger.Info("page limit reached",
				logging.Int("max_pages", c.cfg.MaxPages),
				logging.Int("total_fetched", result.TotalFetched),
			)
			break
		}
		if err := c.sleeper(ctx, c.cfg.PageDelay); err != nil {
			result.State = StateFailed
			return result, err
		}
	}

	result.State = StateDone
	logger.Info("comment collection finished",
		logging.String(logging.FieldEventType, "collect_done"),
		logging.Int("pages", result.Pages),
		logging.Int("total_fetched", result.TotalFetched),
		logging.Int("kept", len(result.Comments)),
		logging.Bool("truncated", result.Truncated),
		logging.Bool("partial", result.Partial),
	)
	return result, nil
}

func (c *Collector) retryOptions(logger *slog.Logger, op string) []retry.Option {
	opts := []retry.Option{retry.WithSleeper(c.sleeper), retry.WithLogger(logger, op)}
	return append(opts, c.retryOpts...)
}

// pageProgress maps fetched/estimated onto 5..75.
func pageProgress(fetched, estimated int) float64 {
	if estimated <= 0 {
		estimated = comments.DefaultEstimatedComments
	}
	ratio := float64(fetched) / float64(estimated)
	if ratio > 1 {
		ratio = 1
	}
	return 5 + 70*ratio
}
