package config

const (
	defaultConfigPath              = "~/.config/ytpulse/config.toml"
	defaultStateDir                = "~/.local/state/ytpulse"
	defaultLogDir                  = "~/.local/share/ytpulse/logs"
	defaultBind                    = "127.0.0.1:7489"
	defaultMaxConcurrentJobs       = 1
	defaultRetryAfterSeconds       = 30
	defaultShutdownTimeoutSeconds  = 10
	defaultYouTubeBaseURL          = "https://www.googleapis.com/youtube/v3"
	defaultYouTubePageSize         = 100
	defaultYouTubeMaxPages         = 100
	defaultYouTubePageDelayMS      = 100
	defaultYouTubeRequestsPerSec   = 5
	defaultYouTubeTimeoutSeconds   = 30
	defaultLLMBaseURL              = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                = "google/gemini-2.5-flash"
	defaultLLMReferer              = "https://github.com/ytpulse/ytpulse"
	defaultLLMTitle                = "ytpulse"
	defaultLLMTemperature          = 0.3
	defaultLLMMaxTokens            = 4096
	defaultLLMTimeoutSeconds       = 120
	defaultDeepSeekBaseURL         = "https://api.deepseek.com/chat/completions"
	defaultDeepSeekModel           = "deepseek-chat"
	defaultGeminiBaseURL           = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultGeminiModel             = "gemini-2.5-flash"
	defaultTranslateBatchSize      = 10
	defaultTranslateBatchDelayMS   = 500
	defaultTranslateTargetLanguage = "Simplified Chinese"
	defaultSummaryThreshold        = 500
	defaultSummaryBatchSize        = 500
	defaultSummaryParallelism      = 1
	defaultSummaryBatchDelayMS     = 1000
	defaultSummaryPopularLimit     = 50
	defaultSummaryRecentLimit      = 100
	defaultSummarySentimentLimit   = 100
	defaultSummaryLanguage         = "Simplified Chinese"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Server: Server{
			Bind:                   defaultBind,
			MaxConcurrentJobs:      defaultMaxConcurrentJobs,
			RetryAfterSeconds:      defaultRetryAfterSeconds,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			PageSize:          defaultYouTubePageSize,
			MaxPages:          defaultYouTubeMaxPages,
			PageDelayMS:       defaultYouTubePageDelayMS,
			RequestsPerSecond: defaultYouTubeRequestsPerSec,
			TimeoutSeconds:    defaultYouTubeTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			Temperature:    defaultLLMTemperature,
			MaxTokens:      defaultLLMMaxTokens,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Translate: Translate{
			BatchSize:      defaultTranslateBatchSize,
			BatchDelayMS:   defaultTranslateBatchDelayMS,
			TargetLanguage: defaultTranslateTargetLanguage,
		},
		Summary: Summary{
			Threshold:      defaultSummaryThreshold,
			BatchSize:      defaultSummaryBatchSize,
			Parallelism:    defaultSummaryParallelism,
			BatchDelayMS:   defaultSummaryBatchDelayMS,
			PopularLimit:   defaultSummaryPopularLimit,
			RecentLimit:    defaultSummaryRecentLimit,
			SentimentLimit: defaultSummarySentimentLimit,
			Language:       defaultSummaryLanguage,
		},
		Retry: Retry{
			YouTube: RetryPolicy{
				MaxRetries:            5,
				InitialDelayMS:        2000,
				MaxDelayMS:            30000,
				BackoffFactor:         2,
				Jitter:                true,
				AttemptTimeoutSeconds: 30,
			},
			Translate: RetryPolicy{
				MaxRetries:            3,
				InitialDelayMS:        2000,
				MaxDelayMS:            30000,
				BackoffFactor:         1.8,
				Jitter:                true,
				AttemptTimeoutSeconds: 30,
			},
			Summary: RetryPolicy{
				MaxRetries:            3,
				InitialDelayMS:        2000,
				MaxDelayMS:            10000,
				BackoffFactor:         2,
				Jitter:                true,
				AttemptTimeoutSeconds: 120,
			},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
