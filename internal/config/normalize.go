package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeYouTube()
	c.normalizeLLM()
	c.normalizeTranslate()
	c.normalizeSummary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	if value, ok := os.LookupEnv("YTPULSE_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = value
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.RetryAfterSeconds <= 0 {
		c.Server.RetryAfterSeconds = defaultRetryAfterSeconds
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = defaultShutdownTimeoutSeconds
	}
}

func lookupEnvFallback(current string, keys ...string) string {
	if strings.TrimSpace(current) != "" {
		return strings.TrimSpace(current)
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = lookupEnvFallback(c.YouTube.APIKey, "YOUTUBE_API_KEY")
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = lookupEnvFallback(c.LLM.APIKey, "LLM_API_KEY", "OPENROUTER_API_KEY")
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

// A provider-specific key in the environment also selects that provider's
// endpoint, unless the section names one itself.
func (c *Config) normalizeTranslate() {
	if strings.TrimSpace(c.Translate.APIKey) == "" {
		if key := lookupEnvFallback("", "DEEPSEEK_API_KEY"); key != "" {
			c.Translate.APIKey = key
			if strings.TrimSpace(c.Translate.BaseURL) == "" {
				c.Translate.BaseURL = defaultDeepSeekBaseURL
			}
			if strings.TrimSpace(c.Translate.Model) == "" {
				c.Translate.Model = defaultDeepSeekModel
			}
		}
	}
	c.Translate.TargetLanguage = strings.TrimSpace(c.Translate.TargetLanguage)
	if c.Translate.TargetLanguage == "" {
		c.Translate.TargetLanguage = defaultTranslateTargetLanguage
	}
}

func (c *Config) normalizeSummary() {
	if strings.TrimSpace(c.Summary.APIKey) == "" {
		if key := lookupEnvFallback("", "GEMINI_API_KEY"); key != "" {
			c.Summary.APIKey = key
			if strings.TrimSpace(c.Summary.BaseURL) == "" {
				c.Summary.BaseURL = defaultGeminiBaseURL
			}
			if strings.TrimSpace(c.Summary.Model) == "" {
				c.Summary.Model = defaultGeminiModel
			}
		}
	}
	c.Summary.Language = strings.TrimSpace(c.Summary.Language)
	if c.Summary.Language == "" {
		c.Summary.Language = defaultSummaryLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
