package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ytpulse/internal/comments"
	"ytpulse/internal/events"
	"ytpulse/internal/logging"
	"ytpulse/internal/retry"
)

const (
	DefaultBatchSize = 10
	DefaultLanguage  = "Simplified Chinese"

	StageTranslating = "translating comments"
)

// Completer is the text model used for translation.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config tunes batching.
type Config struct {
	BatchSize      int
	BatchDelay     time.Duration
	TargetLanguage string
	Retry          retry.Policy
}

// Result summarizes a translation run. Translations follow input order.
type Result struct {
	Translations  []events.Translation
	SuccessCount  int
	FailedBatches int
}

// Translator translates comments in fixed-size, line-aligned chunks.
type Translator struct {
	model     Completer
	cfg       Config
	logger    *slog.Logger
	sleeper   func(context.Context, time.Duration) error
	retryOpts []retry.Option
}

// Option customizes the translator.
type Option func(*Translator)

// WithLogger sets the translator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithSleeper overrides the inter-chunk delay and retry backoff waits.
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(t *Translator) {
		if sleeper != nil {
			t.sleeper = sleeper
		}
	}
}

// WithRetryOptions appends options to every retried model call.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(t *Translator) {
		t.retryOpts = append(t.retryOpts, opts...)
	}
}

// New constructs a translator backed by model.
func New(model Completer, cfg Config, opts ...Option) *Translator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if strings.TrimSpace(cfg.TargetLanguage) == "" {
		cfg.TargetLanguage = DefaultLanguage
	}
	t := &Translator{
		model:   model,
		cfg:     cfg,
		logger:  logging.NewNop(),
		sleeper: retry.Sleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run translates list chunk by chunk. A chunk that fails after retries falls
// back to the original text and the run continues. Only cancellation aborts.
func (t *Translator) Run(ctx context.Context, list []comments.Comment, stream *events.Stream) (Result, error) {
	var result Result
	total := len(list)
	if total == 0 {
		return result, nil
	}
	logger := logging.WithContext(ctx, t.logger)
	batches := (total + t.cfg.BatchSize - 1) / t.cfg.BatchSize
	stream.Progress(StageTranslating, 0, 0, total)

	processed := 0
	for start, batch := 0, 1; start < total; start, batch = start+t.cfg.BatchSize, batch+1 {
		end := min(start+t.cfg.BatchSize, total)
		chunk := list[start:end]
		stream.Progress(fmt.Sprintf("translating batch %d/%d", batch, batches), percent(processed, total), processed, total)

		translated, err := t.translateChunk(ctx, logger.With(logging.Batch(batch)), chunk)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.FailedBatches++
			stream.Warn(events.ErrorData{
				Message: fmt.Sprintf("translation batch %d failed: %v", batch, err),
				Batch:   batch,
			})
			logging.WarnWithContext(logger, "translation batch failed", "translate_batch_failed",
				logging.Batch(batch),
				logging.Error(err),
				logging.Impact("batch keeps original text"),
			)
		}

		out := make([]events.Translation, len(chunk))
		for i, c := range chunk {
			original := c.SourceText()
			text := original
			if i < len(translated) && translated[i] != "" {
				text = translated[i]
			}
			if text != original {
				result.SuccessCount++
			}
			out[i] = events.Translation{ID: c.ID, TranslatedText: text, OriginalText: original}
		}
		result.Translations = append(result.Translations, out...)
		processed = end
		stream.Translated(out)
		stream.Progress(fmt.Sprintf("translated %d/%d", processed, total), percent(processed, total), processed, total)

		if end < total {
			if err := t.sleeper(ctx, t.cfg.BatchDelay); err != nil {
				return result, err
			}
		}
	}
	logger.Info("translation finished",
		logging.String(logging.FieldEventType, "translate_done"),
		logging.Int("total", total),
		logging.Int("translated", result.SuccessCount),
		logging.Int("failed_batches", result.FailedBatches),
	)
	return result, nil
}

// translateChunk returns one cleaned line per comment, or "" where the model
// returned nothing for that position.
func (t *Translator) translateChunk(ctx context.Context, logger *slog.Logger, chunk []comments.Comment) ([]string, error) {
	lines := make([]string, len(chunk))
	for i, c := range chunk {
		lines[i] = comments.CleanText(comments.PlainText(c))
	}
	system := systemPrompt(t.cfg.TargetLanguage)
	user := userPrompt(t.cfg.TargetLanguage, lines)
	opts := append([]retry.Option{retry.WithSleeper(t.sleeper), retry.WithLogger(logger, "translate batch")}, t.retryOpts...)
	reply, err := retry.Do(ctx, t.cfg.Retry, func(ctx context.Context) (string, error) {
		return t.model.Complete(ctx, system, user)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return alignLines(reply, len(chunk)), nil
}

// alignLines splits reply into at most n non-blank, whitespace-collapsed lines.
func alignLines(reply string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range strings.Split(reply, "\n") {
		line = comments.CleanText(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func percent(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}

// Apply copies translated text onto the matching comments by id.
func Apply(list []comments.Comment, translations []events.Translation) []comments.Comment {
	byID := make(map[string]string, len(translations))
	for _, tr := range translations {
		byID[tr.ID] = tr.TranslatedText
	}
	out := make([]comments.Comment, len(list))
	for i, c := range list {
		if text, ok := byID[c.ID]; ok {
			c.TranslatedText = text
		}
		out[i] = c
	}
	return out
}
