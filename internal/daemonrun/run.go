// Package daemonrun owns daemon process bootstrap: logging, pid file,
// dependency snapshot, and wiring the stages into a running daemon.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reelsnap/internal/assembly"
	"reelsnap/internal/config"
	"reelsnap/internal/daemon"
	"reelsnap/internal/deps"
	"reelsnap/internal/jobs"
	"reelsnap/internal/ledger"
	"reelsnap/internal/logging"
	"reelsnap/internal/notifications"
	"reelsnap/internal/server"
	"reelsnap/internal/synthesis"
	"reelsnap/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the reelsnap daemon runtime loop and blocks until the process
// receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("reelsnap-%s.log", runID))

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update reelsnap.log link: %v\n", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "reelsnap.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	led, err := ledger.Open(cfg.Paths.LedgerPath)
	if err != nil {
		logger.Error("open completion ledger", logging.Error(err))
		return err
	}

	source := jobs.NewSource(cfg.Paths.JobRoot, logger)
	notifier := notifications.NewService(cfg)
	manager := workflow.NewManagerWithNotifier(cfg, source, led,
		synthesis.NewStage(cfg, logger),
		assembly.NewStage(cfg, logger),
		notifier, logger)

	var apiServer *server.Server
	if strings.TrimSpace(cfg.Server.Bind) != "" {
		apiServer = server.New(cfg, source, led, manager.Status, logger)
	}

	d, err := daemon.New(cfg, manager, apiServer, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and whether another instance holds the lock"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("reelsnap daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "reelsnap.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []any{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("tts_key_present", strings.TrimSpace(cfg.TTS.APIKey) != ""),
		logging.String("tts_base_url", cfg.TTS.BaseURL),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
	}
	for _, status := range deps.CheckBinaries(deps.Required(cfg.Assembly.FFmpegBinary)) {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
		if !status.Available {
			attrs = append(attrs, logging.String(key+"_detail", status.Detail))
		}
	}
	logger.Info("dependency snapshot", attrs...)
}
