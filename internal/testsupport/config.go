package testsupport

import (
	"path/filepath"
	"testing"

	"ytpulse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are set to placeholders, delays are zeroed and retry jitter is
// disabled so tests run fast and deterministically.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.YouTube.APIKey = "test"
	cfgVal.LLM.APIKey = "test"
	cfgVal.YouTube.PageDelayMS = 0
	cfgVal.Translate.BatchDelayMS = 0
	cfgVal.Summary.BatchDelayMS = 0
	for _, p := range []*config.RetryPolicy{&cfgVal.Retry.YouTube, &cfgVal.Retry.Translate, &cfgVal.Retry.Summary} {
		p.Jitter = false
		p.InitialDelayMS = 1
		p.MaxDelayMS = 1
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutCredentials clears every API key on the test config.
func WithoutCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.APIKey = ""
		b.cfg.LLM.APIKey = ""
		b.cfg.Translate.APIKey = ""
		b.cfg.Summary.APIKey = ""
	}
}

// WithCapacity sets the number of concurrent video jobs.
func WithCapacity(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.MaxConcurrentJobs = n
	}
}

// WithMaxPages bounds the collector.
func WithMaxPages(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.MaxPages = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
