package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytpulse/internal/config"
	"ytpulse/internal/jobs"
	"ytpulse/internal/logging"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	runnerOpts []jobs.Option

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool, runnerOpts ...jobs.Option) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
		runnerOpts:  runnerOpts,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once. Logs go to stderr and the
// configured log directory, never stdout.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// quietLogger is used by in-process commands that render their own progress;
// it drops everything below warnings unless --verbose is set.
func (c *commandContext) quietLogger() *slog.Logger {
	if c.verboseFlag != nil && *c.verboseFlag {
		if logger, err := c.ensureLogger(); err == nil {
			return logger
		}
	}
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console"})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) newRunner(logger *slog.Logger) (*jobs.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return jobs.New(cfg, logger, c.runnerOpts...), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
