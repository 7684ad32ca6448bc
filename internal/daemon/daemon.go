package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"reelsnap/internal/config"
	"reelsnap/internal/logging"
	"reelsnap/internal/notifications"
	"reelsnap/internal/server"
	"reelsnap/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	workflow *workflow.Manager
	api      *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	JobRoot      string
	ReelsDir     string
	LedgerPath   string
	LockFilePath string
	APIAddress   string
}

// New constructs a daemon with initialized dependencies. api may be nil when
// the upload server is disabled.
func New(cfg *config.Config, wf *workflow.Manager, api *server.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || wf == nil || logger == nil {
		return nil, errors.New("daemon requires config, workflow manager, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "reelsnapd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		workflow: wf,
		api:      api,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the workflow manager and the
// upload API together; if either fails to come up the daemon rolls back to
// stopped.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelsnap daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	var g errgroup.Group
	g.Go(func() error { return d.workflow.Start(d.ctx) })
	if d.api != nil {
		g.Go(func() error { return d.api.Start(d.ctx) })
	}
	if err := g.Wait(); err != nil {
		d.workflow.Stop()
		if d.api != nil {
			d.api.Stop()
		}
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		_ = d.lock.Unlock()
		return fmt.Errorf("start daemon services: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("reelsnap daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if d.api != nil {
		d.api.Stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("reelsnap daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		Workflow:     d.workflow.Status(ctx),
		JobRoot:      d.cfg.Paths.JobRoot,
		ReelsDir:     d.cfg.Paths.ReelsDir,
		LedgerPath:   d.cfg.Paths.LedgerPath,
		LockFilePath: d.lockPath,
	}
	if d.api != nil {
		status.APIAddress = d.api.Addr()
	}
	return status
}
