package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains operational directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Server contains HTTP server and job admission settings.
type Server struct {
	Bind                   string `toml:"bind"`
	MaxConcurrentJobs      int    `toml:"max_concurrent_jobs"`
	RetryAfterSeconds      int    `toml:"retry_after_seconds"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

// YouTube contains YouTube Data API settings and collector bounds.
type YouTube struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	PageSize          int     `toml:"page_size"`
	MaxPages          int     `toml:"max_pages"`
	PageDelayMS       int     `toml:"page_delay_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// LLM contains shared chat completion connection settings.
type LLM struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	Referer           string  `toml:"referer"`
	Title             string  `toml:"title"`
	Temperature       float64 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
}

// Translate contains batch translation settings. Connection fields fall back
// to [llm] when empty.
type Translate struct {
	BatchSize      int    `toml:"batch_size"`
	BatchDelayMS   int    `toml:"batch_delay_ms"`
	TargetLanguage string `toml:"target_language"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
}

// Summary contains summarization settings. Connection fields fall back to
// [llm] when empty.
type Summary struct {
	Threshold      int    `toml:"threshold"`
	BatchSize      int    `toml:"batch_size"`
	Parallelism    int    `toml:"parallelism"`
	BatchDelayMS   int    `toml:"batch_delay_ms"`
	FullLimit      int    `toml:"full_limit"`
	PopularLimit   int    `toml:"popular_limit"`
	RecentLimit    int    `toml:"recent_limit"`
	SentimentLimit int    `toml:"sentiment_limit"`
	Language       string `toml:"language"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
}

// RetryPolicy is the file representation of a backoff policy.
type RetryPolicy struct {
	MaxRetries            int     `toml:"max_retries"`
	InitialDelayMS        int     `toml:"initial_delay_ms"`
	MaxDelayMS            int     `toml:"max_delay_ms"`
	BackoffFactor         float64 `toml:"backoff_factor"`
	Jitter                bool    `toml:"jitter"`
	AttemptTimeoutSeconds int     `toml:"attempt_timeout_seconds"`
}

// InitialDelay returns the first backoff delay.
func (p RetryPolicy) InitialDelay() time.Duration {
	return time.Duration(p.InitialDelayMS) * time.Millisecond
}

// MaxDelay returns the backoff ceiling.
func (p RetryPolicy) MaxDelay() time.Duration {
	return time.Duration(p.MaxDelayMS) * time.Millisecond
}

// AttemptTimeout returns the per-call upper bound.
func (p RetryPolicy) AttemptTimeout() time.Duration {
	return time.Duration(p.AttemptTimeoutSeconds) * time.Second
}

// Retry groups the per call-site retry policies.
type Retry struct {
	YouTube   RetryPolicy `toml:"youtube"`
	Translate RetryPolicy `toml:"translate"`
	Summary   RetryPolicy `toml:"summary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ytpulse.
//
// Configuration sections by subsystem:
//   - Paths: lock file and log directories
//   - Server: HTTP bind address and job admission
//   - YouTube: Data API credentials, pagination bounds and pacing
//   - LLM: shared chat completion connection settings
//   - Translate: translation batching and optional dedicated credentials
//   - Summary: summarization thresholds, strategy limits and credentials
//   - Retry: backoff policies for each upstream call site
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Server    Server    `toml:"server"`
	YouTube   YouTube   `toml:"youtube"`
	LLM       LLM       `toml:"llm"`
	Translate Translate `toml:"translate"`
	Summary   Summary   `toml:"summary"`
	Retry     Retry     `toml:"retry"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ytpulse.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the server needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the single-instance lock file for the server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "ytpulse.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved connection settings for one LLM consumer.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Referer           string
	Title             string
	Temperature       float64
	MaxTokens         int
	TimeoutSeconds    int
	RequestsPerMinute int
}

func (c *Config) sharedLLM() LLMConfig {
	return LLMConfig{
		APIKey:            strings.TrimSpace(c.LLM.APIKey),
		BaseURL:           strings.TrimSpace(c.LLM.BaseURL),
		Model:             strings.TrimSpace(c.LLM.Model),
		Referer:           strings.TrimSpace(c.LLM.Referer),
		Title:             strings.TrimSpace(c.LLM.Title),
		Temperature:       c.LLM.Temperature,
		MaxTokens:         c.LLM.MaxTokens,
		TimeoutSeconds:    c.LLM.TimeoutSeconds,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}
}

func overlay(base LLMConfig, apiKey, baseURL, model string) LLMConfig {
	if v := strings.TrimSpace(apiKey); v != "" {
		base.APIKey = v
	}
	if v := strings.TrimSpace(baseURL); v != "" {
		base.BaseURL = v
	}
	if v := strings.TrimSpace(model); v != "" {
		base.Model = v
	}
	return base
}

// TranslateLLM returns the LLM settings for translation.
// Falls back to [llm] settings when not explicitly configured.
func (c *Config) TranslateLLM() LLMConfig {
	return overlay(c.sharedLLM(), c.Translate.APIKey, c.Translate.BaseURL, c.Translate.Model)
}

// SummaryLLM returns the LLM settings for summarization.
// Falls back to [llm] settings when not explicitly configured.
func (c *Config) SummaryLLM() LLMConfig {
	return overlay(c.sharedLLM(), c.Summary.APIKey, c.Summary.BaseURL, c.Summary.Model)
}

// PageDelay returns the pause between successful comment pages.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.YouTube.PageDelayMS) * time.Millisecond
}

// TranslateDelay returns the pause between translation chunks.
func (c *Config) TranslateDelay() time.Duration {
	return time.Duration(c.Translate.BatchDelayMS) * time.Millisecond
}

// SummaryDelay returns the pause between sequential summary batches.
func (c *Config) SummaryDelay() time.Duration {
	return time.Duration(c.Summary.BatchDelayMS) * time.Millisecond
}

// RetryAfter is the back-off hint returned with capacity rejections.
func (c *Config) RetryAfter() time.Duration {
	return time.Duration(c.Server.RetryAfterSeconds) * time.Second
}
