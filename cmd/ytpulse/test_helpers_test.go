package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ytpulse/internal/config"
	"ytpulse/internal/events"
	"ytpulse/internal/jobs"
	"ytpulse/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	source     *testsupport.FakeSource
	model      *testsupport.FakeModel
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		source:     testsupport.NewFakeSource("dQw4w9WgXcQ", 2, 4),
		model:      &testsupport.FakeModel{},
	}
}

func (e *cliTestEnv) runnerOptions() []jobs.Option {
	return []jobs.Option{
		jobs.WithSource(e.source),
		jobs.WithTranslateModel(e.model),
		jobs.WithSummaryModel(e.model),
		jobs.WithSleeper(noSleep),
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath, e.runnerOptions()...)
}

func runCLI(t *testing.T, args []string, configPath string, runnerOpts ...jobs.Option) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWith(runnerOpts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

type rawEvent struct {
	Type events.Type     `json:"type"`
	Data json.RawMessage `json:"data"`
}

func parseEvents(t *testing.T, output string) []rawEvent {
	t.Helper()
	var out []rawEvent
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e rawEvent
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan events: %v", err)
	}
	return out
}

func countType(list []rawEvent, typ events.Type) int {
	n := 0
	for _, e := range list {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
