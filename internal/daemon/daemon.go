package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"ytpulse/internal/config"
	"ytpulse/internal/jobs"
	"ytpulse/internal/logging"
)

// Daemon serves the job runner over HTTP and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runner *jobs.Runner

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	mu        sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Address      string
	LockFilePath string
	StartedAt    time.Time
}

// New constructs a daemon around runner.
func New(cfg *config.Config, runner *jobs.Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and job runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the lock and begins serving.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(d.cfg.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another ytpulse server is already running for this state directory")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("ytpulse server started",
		logging.String(logging.FieldEventType, "server_start"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
		logging.Int("max_concurrent_jobs", d.cfg.Server.MaxConcurrentJobs),
	)
	return nil
}

// Stop shuts the HTTP server down and releases the lock. In-flight requests
// get ShutdownTimeoutSeconds to finish.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	d.api.stop(time.Duration(d.cfg.Server.ShutdownTimeoutSeconds) * time.Second)
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release server lock", "lock_release_failed",
			logging.Error(err),
			logging.Impact("the next start may report an existing instance"),
		)
	}
	d.running.Store(false)
	d.logger.Info("ytpulse server stopped", logging.String(logging.FieldEventType, "server_stop"))
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Address:      d.api.addr(),
		LockFilePath: d.lockPath,
		StartedAt:    startedAt,
	}
}

// Addr returns the bound listener address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}
