package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/logging"
	"ytpulse/internal/retry"
	"ytpulse/internal/services/llm"
)

const (
	DefaultThreshold = 500
	DefaultBatchSize = 500
	DefaultLanguage  = "Simplified Chinese"

	StageSummarizing = "summarizing comments"
)

var (
	// ErrNoComments is returned when the strategy selects nothing.
	ErrNoComments = errors.New("no comments to summarize")
	// ErrAllBatchesFailed matches an *AggregateError.
	ErrAllBatchesFailed = errors.New("all summary batches failed")
)

// AggregateError carries every batch failure when no batch succeeded.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return ErrAllBatchesFailed.Error()
	}
	return fmt.Sprintf("%s (%d batches): %v", ErrAllBatchesFailed, len(e.Errors), e.Errors[0])
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

func (e *AggregateError) Is(target error) bool { return target == ErrAllBatchesFailed }

// Completer is the text model used for summaries.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// BatchSummary is one batch's report, or its failure placeholder.
type BatchSummary struct {
	BatchIndex   int    `json:"batchIndex"`
	CommentCount int    `json:"commentCount"`
	Summary      string `json:"summary"`
	Failed       bool   `json:"failed"`
	err          error
}

// Summary is the structured report returned to callers.
type Summary struct {
	Sections
	Strategy         Strategy `json:"strategy"`
	AnalyzedComments int      `json:"analyzedComments"`
	TotalComments    int      `json:"totalComments"`
	Timestamp        string   `json:"timestamp"`
	RawSummary       string   `json:"rawSummary"`
	BatchProcessed   bool     `json:"batchProcessed"`
	Batches          int      `json:"batches,omitempty"`
	FailedBatches    int      `json:"failedBatches,omitempty"`
}

// Config tunes selection and batching.
type Config struct {
	Threshold   int
	BatchSize   int
	Parallelism int
	BatchDelay  time.Duration
	Language    string
	Limits      Limits
	Retry       retry.Policy
}

// Summarizer produces strategy-specific reports, batching large inputs.
type Summarizer struct {
	model     Completer
	cfg       Config
	logger    *slog.Logger
	sleeper   func(context.Context, time.Duration) error
	now       func() time.Time
	retryOpts []retry.Option
}

// Option customizes the summarizer.
type Option func(*Summarizer)

// WithLogger sets the summarizer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSleeper overrides inter-batch delays and retry backoff waits.
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(s *Summarizer) {
		if sleeper != nil {
			s.sleeper = sleeper
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetryOptions appends options to every retried model call.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(s *Summarizer) {
		s.retryOpts = append(s.retryOpts, opts...)
	}
}

// New constructs a summarizer backed by model.
func New(model Completer, cfg Config, opts ...Option) *Summarizer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = DefaultLanguage
	}
	s := &Summarizer{
		model:   model,
		cfg:     cfg,
		logger:  logging.NewNop(),
		sleeper: retry.Sleep,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run selects comments for strategy and summarizes them. Progress goes to
// stream on its 0-100 scale; the terminal event is left to the caller.
func (s *Summarizer) Run(ctx context.Context, list []comments.Comment, strategy Strategy, stream *events.Stream) (Summary, error) {
	logger := logging.WithContext(ctx, s.logger).With(logging.String("strategy", string(strategy)))
	selected := Select(list, strategy, s.cfg.Limits)
	if len(selected) == 0 {
		return Summary{}, ErrNoComments
	}
	result := Summary{
		Strategy:         strategy,
		AnalyzedComments: len(selected),
		TotalComments:    len(list),
	}

	stream.Progress(StageSummarizing, 0, 0, len(selected))
	var raw string
	var sections *Sections
	if len(selected) <= s.cfg.Threshold {
		text, err := s.complete(ctx, logger, "summarize", summaryPrompt(strategy, selected, s.cfg.Language))
		if err != nil {
			return Summary{}, fmt.Errorf("summarize %d comments: %w", len(selected), err)
		}
		raw = text
	} else {
		batches, err := s.summarizeBatches(ctx, logger, strategy, selected, stream)
		if err != nil {
			return Summary{}, err
		}
		result.BatchProcessed = true
		result.Batches = len(batches)
		for _, b := range batches {
			if b.Failed {
				result.FailedBatches++
			}
		}
		raw, sections, err = s.merge(ctx, logger, batches, len(selected))
		if err != nil {
			return Summary{}, err
		}
	}

	result.RawSummary = raw
	if sections != nil {
		result.Sections = *sections
	} else {
		result.Sections = ParseSections(raw)
	}
	result.Timestamp = s.now().UTC().Format(time.RFC3339)
	stream.Progress(StageSummarizing, 100, len(selected), len(selected))
	logger.Info("summary generated",
		logging.String(logging.FieldEventType, "summary_done"),
		logging.Int("analyzed", result.AnalyzedComments),
		logging.Int("batches", result.Batches),
		logging.Int("failed_batches", result.FailedBatches),
	)
	return result, nil
}

func (s *Summarizer) complete(ctx context.Context, logger *slog.Logger, op, prompt string) (string, error) {
	opts := append([]retry.Option{retry.WithSleeper(s.sleeper), retry.WithLogger(logger, op)}, s.retryOpts...)
	text, err := retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) (string, error) {
		return s.model.Complete(ctx, systemPrompt, prompt)
	}, opts...)
	if err != nil {
		return "", err
	}
	return llm.StripCodeFence(text), nil
}

// summarizeBatches runs every batch and returns results in batch order.
// Individual failures become placeholders; only cancellation aborts.
func (s *Summarizer) summarizeBatches(ctx context.Context, logger *slog.Logger, strategy Strategy, selected []comments.Comment, stream *events.Stream) ([]BatchSummary, error) {
	var chunks [][]comments.Comment
	for start := 0; start < len(selected); start += s.cfg.BatchSize {
		chunks = append(chunks, selected[start:min(start+s.cfg.BatchSize, len(selected))])
	}
	results := make([]BatchSummary, len(chunks))
	logger.Info("summarizing in batches",
		logging.Int("comments", len(selected)),
		logging.Int("batches", len(chunks)),
		logging.Int("parallelism", s.cfg.Parallelism),
	)

	run := func(i int) {
		batchLogger := logger.With(logging.Batch(i+1))
		prompt := batchPrompt(strategy, i+1, len(chunks), chunks[i], s.cfg.Language)
		text, err := s.complete(ctx, batchLogger, "summarize batch", prompt)
		results[i] = BatchSummary{BatchIndex: i, CommentCount: len(chunks[i]), Summary: text, Failed: err != nil, err: err}
		if err != nil {
			logging.WarnWithContext(batchLogger, "summary batch failed", "summary_batch_failed",
				logging.Error(err),
				logging.Impact("batch excluded from merged report"),
			)
		}
	}

	if s.cfg.Parallelism > 1 {
		var g errgroup.Group
		g.SetLimit(s.cfg.Parallelism)
		for i := range chunks {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
		stream.Progress(StageSummarizing, 90, len(selected), len(selected))
	} else {
		done := 0
		for i := range chunks {
			stream.Progress(fmt.Sprintf("summarizing batch %d/%d", i+1, len(chunks)), float64(done)*90/float64(len(selected)), done, len(selected))
			run(i)
			done += len(chunks[i])
			if i < len(chunks)-1 {
				if err := s.sleeper(ctx, s.cfg.BatchDelay); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// merge folds batch reports into one text. When the merge call fails the
// reports are concatenated and the sections come back already joined, since
// the concatenation repeats every marker once per batch.
func (s *Summarizer) merge(ctx context.Context, logger *slog.Logger, batches []BatchSummary, total int) (string, *Sections, error) {
	var ok []BatchSummary
	var errs []error
	for _, b := range batches {
		if b.Failed {
			errs = append(errs, fmt.Errorf("batch %d: %w", b.BatchIndex+1, b.err))
			continue
		}
		ok = append(ok, b)
	}
	switch len(ok) {
	case 0:
		return "", nil, &AggregateError{Errors: errs}
	case 1:
		return ok[0].Summary, nil, nil
	}
	merged, err := s.complete(ctx, logger, "merge summaries", mergePrompt(ok, total, s.cfg.Language))
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		logging.WarnWithContext(logger, "summary merge failed", "summary_merge_failed",
			logging.Error(err),
			logging.Impact("batch reports concatenated"),
		)
		joined := joinSections(ok)
		return concatenated(ok, total), &joined, nil
	}
	return merged, nil, nil
}
