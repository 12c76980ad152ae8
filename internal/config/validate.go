package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireYouTube and RequireLLM so commands that never reach an
// upstream can run without them.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	if c.Server.MaxConcurrentJobs < 1 {
		return errors.New("server.max_concurrent_jobs must be at least 1")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.PageSize < 1 || c.YouTube.PageSize > 100 {
		return errors.New("youtube.page_size must be between 1 and 100")
	}
	if c.YouTube.MaxPages < 1 {
		return errors.New("youtube.max_pages must be at least 1")
	}
	if c.YouTube.PageDelayMS < 0 {
		return errors.New("youtube.page_delay_ms must not be negative")
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return errors.New("youtube.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	if c.Translate.BatchSize < 1 {
		return errors.New("translate.batch_size must be at least 1")
	}
	if c.Translate.BatchDelayMS < 0 {
		return errors.New("translate.batch_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateSummary() error {
	if c.Summary.Threshold < 1 {
		return errors.New("summary.threshold must be at least 1")
	}
	if c.Summary.BatchSize < 1 {
		return errors.New("summary.batch_size must be at least 1")
	}
	if c.Summary.Parallelism < 1 {
		return errors.New("summary.parallelism must be at least 1")
	}
	if c.Summary.BatchDelayMS < 0 {
		return errors.New("summary.batch_delay_ms must not be negative")
	}
	if c.Summary.FullLimit < 0 || c.Summary.PopularLimit < 0 || c.Summary.RecentLimit < 0 || c.Summary.SentimentLimit < 0 {
		return errors.New("summary limits must not be negative")
	}
	return nil
}

func validatePolicy(name string, p RetryPolicy) error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("retry.%s.max_retries must not be negative", name)
	}
	if p.InitialDelayMS < 0 || p.MaxDelayMS < 0 {
		return fmt.Errorf("retry.%s delays must not be negative", name)
	}
	if p.MaxDelayMS > 0 && p.InitialDelayMS > p.MaxDelayMS {
		return fmt.Errorf("retry.%s.initial_delay_ms must not exceed max_delay_ms", name)
	}
	if p.BackoffFactor < 1 {
		return fmt.Errorf("retry.%s.backoff_factor must be at least 1", name)
	}
	if p.AttemptTimeoutSeconds < 0 {
		return fmt.Errorf("retry.%s.attempt_timeout_seconds must not be negative", name)
	}
	return nil
}

func (c *Config) validateRetry() error {
	if err := validatePolicy("youtube", c.Retry.YouTube); err != nil {
		return err
	}
	if err := validatePolicy("translate", c.Retry.Translate); err != nil {
		return err
	}
	return validatePolicy("summary", c.Retry.Summary)
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func configHint() string {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return defaultPath
}

// RequireYouTube reports a missing YouTube Data API key.
func (c *Config) RequireYouTube() error {
	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'ytpulse config init')", configHint())
	}
	return nil
}

// RequireLLM reports a missing key for the translation or summary LLM.
func (c *Config) RequireLLM(stage string) error {
	var key string
	switch stage {
	case "translate":
		key = c.TranslateLLM().APIKey
	default:
		key = c.SummaryLLM().APIKey
	}
	if key == "" {
		return fmt.Errorf("%s LLM api key is required. Set LLM_API_KEY env var or edit [llm] in %s", stage, configHint())
	}
	return nil
}
