package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"ytpulse/internal/collector"
	"ytpulse/internal/config"
	"ytpulse/internal/jobgate"
	"ytpulse/internal/logging"
	"ytpulse/internal/retry"
	"ytpulse/internal/services"
	"ytpulse/internal/services/llm"
	"ytpulse/internal/services/youtube"
	"ytpulse/internal/summary"
	"ytpulse/internal/translate"
)

// Counters are lifetime totals for gated video jobs.
type Counters struct {
	Started   int64 `json:"started"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Runner owns the concurrency gate and the pipeline stages. Transports call
// into it; it is safe for concurrent use.
type Runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	gate       *jobgate.Gate
	retryAfter time.Duration

	collector  *collector.Collector
	translator *translate.Translator
	summarizer *summary.Summarizer

	sourceErr    error
	translateErr error
	summaryErr   error

	started, rejected, completed, failed atomic.Int64
}

type runnerOptions struct {
	source         collector.Source
	translateModel translate.Completer
	summaryModel   summary.Completer
	gate           *jobgate.Gate
	sleeper        func(context.Context, time.Duration) error
}

// Option customizes the runner.
type Option func(*runnerOptions)

// WithSource replaces the YouTube client.
func WithSource(source collector.Source) Option {
	return func(o *runnerOptions) { o.source = source }
}

// WithTranslateModel replaces the translation LLM client.
func WithTranslateModel(model translate.Completer) Option {
	return func(o *runnerOptions) { o.translateModel = model }
}

// WithSummaryModel replaces the summary LLM client.
func WithSummaryModel(model summary.Completer) Option {
	return func(o *runnerOptions) { o.summaryModel = model }
}

// WithGate replaces the concurrency gate.
func WithGate(gate *jobgate.Gate) Option {
	return func(o *runnerOptions) { o.gate = gate }
}

// WithSleeper overrides every stage delay and retry backoff wait.
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(o *runnerOptions) { o.sleeper = sleeper }
}

// New builds a runner from configuration. Missing credentials do not fail
// construction; the jobs that need them are refused instead.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	var o runnerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "jobs"),
		gate:       o.gate,
		retryAfter: cfg.RetryAfter(),
	}
	if r.gate == nil {
		r.gate = jobgate.New(cfg.Server.MaxConcurrentJobs)
	}

	source := o.source
	if source == nil {
		r.sourceErr = cfg.RequireYouTube()
		source = youtube.NewClient(youtube.Config{
			APIKey:            cfg.YouTube.APIKey,
			BaseURL:           cfg.YouTube.BaseURL,
			TimeoutSeconds:    cfg.YouTube.TimeoutSeconds,
			RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		})
	}
	translateModel := o.translateModel
	if translateModel == nil {
		r.translateErr = cfg.RequireLLM("translate")
		translateModel = llm.NewClient(llmConfig(cfg.TranslateLLM()))
	}
	summaryModel := o.summaryModel
	if summaryModel == nil {
		r.summaryErr = cfg.RequireLLM("summary")
		summaryModel = llm.NewClient(llmConfig(cfg.SummaryLLM()))
	}

	r.collector = collector.New(source, collector.Config{
		PageSize:  cfg.YouTube.PageSize,
		MaxPages:  cfg.YouTube.MaxPages,
		PageDelay: cfg.PageDelay(),
		Retry:     policy(cfg.Retry.YouTube),
	}, collector.WithLogger(logging.NewComponentLogger(logger, "collector")), collector.WithSleeper(o.sleeper))

	r.translator = translate.New(translateModel, translate.Config{
		BatchSize:      cfg.Translate.BatchSize,
		BatchDelay:     cfg.TranslateDelay(),
		TargetLanguage: cfg.Translate.TargetLanguage,
		Retry:          policy(cfg.Retry.Translate),
	}, translate.WithLogger(logging.NewComponentLogger(logger, "translate")), translate.WithSleeper(o.sleeper))

	r.summarizer = summary.New(summaryModel, summary.Config{
		Threshold:   cfg.Summary.Threshold,
		BatchSize:   cfg.Summary.BatchSize,
		Parallelism: cfg.Summary.Parallelism,
		BatchDelay:  cfg.SummaryDelay(),
		Language:    cfg.Summary.Language,
		Limits: summary.Limits{
			Full:      cfg.Summary.FullLimit,
			Popular:   cfg.Summary.PopularLimit,
			Recent:    cfg.Summary.RecentLimit,
			Sentiment: cfg.Summary.SentimentLimit,
		},
		Retry: policy(cfg.Retry.Summary),
	}, summary.WithLogger(logging.NewComponentLogger(logger, "summary")), summary.WithSleeper(o.sleeper))

	return r
}

func policy(p config.RetryPolicy) retry.Policy {
	return retry.Policy{
		MaxRetries:     p.MaxRetries,
		InitialDelay:   p.InitialDelay(),
		MaxDelay:       p.MaxDelay(),
		BackoffFactor:  p.BackoffFactor,
		Jitter:         p.Jitter,
		AttemptTimeout: p.AttemptTimeout(),
	}
}

func llmConfig(c config.LLMConfig) llm.Config {
	return llm.Config{
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Model:             c.Model,
		Referer:           c.Referer,
		Title:             c.Title,
		Temperature:       c.Temperature,
		MaxTokens:         c.MaxTokens,
		TimeoutSeconds:    c.TimeoutSeconds,
		RequestsPerMinute: c.RequestsPerMinute,
	}
}

// Status returns the gate snapshot.
func (r *Runner) Status() jobgate.Status {
	return r.gate.Status()
}

// Counters returns lifetime job totals.
func (r *Runner) Counters() Counters {
	return Counters{
		Started:   r.started.Load(),
		Rejected:  r.rejected.Load(),
		Completed: r.completed.Load(),
		Failed:    r.failed.Load(),
	}
}

// ResetGate drops every active registration. Running jobs keep running; their
// later release is a no-op.
func (r *Runner) ResetGate() {
	r.gate.Clear()
	r.logger.Warn("job gate cleared", logging.String(logging.FieldEventType, "gate_reset"))
}

func configurationError(stage string, err error) error {
	return services.Wrap(services.ErrConfiguration, stage, "credentials", "", err)
}
