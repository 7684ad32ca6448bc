package workflow

import (
	"log/slog"
	"sync"
	"time"

	"reelsnap/internal/config"
	"reelsnap/internal/jobs"
	"reelsnap/internal/ledger"
	"reelsnap/internal/logging"
	"reelsnap/internal/notifications"
	"reelsnap/internal/stage"
)

// Manager coordinates job processing using the registered stage handlers.
type Manager struct {
	cfg       *config.Config
	source    *jobs.Source
	ledger    *ledger.Ledger
	synthesis stage.Handler
	assembly  stage.Handler
	notifier  notifications.Service
	logger    *slog.Logger

	pollInterval       time.Duration
	errorRetryInterval time.Duration

	mu        sync.RWMutex
	running   bool
	cancel    func()
	wg        sync.WaitGroup
	lastErr   error
	lastJobID string
	processed int
	failed    int
}

// NewManager constructs a workflow manager with the default notifier.
func NewManager(cfg *config.Config, source *jobs.Source, led *ledger.Ledger, synthesis, assembly stage.Handler, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, source, led, synthesis, assembly, notifications.NewService(cfg), logger)
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, source *jobs.Source, led *ledger.Ledger, synthesis, assembly stage.Handler, notifier notifications.Service, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:                cfg,
		source:             source,
		ledger:             led,
		synthesis:          synthesis,
		assembly:           assembly,
		notifier:           notifier,
		logger:             logging.NewComponentLogger(logger, "workflow"),
		pollInterval:       time.Duration(cfg.Workflow.PollInterval) * time.Second,
		errorRetryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}
