package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reelsnap/internal/jobs"
	"reelsnap/internal/logging"
	"reelsnap/internal/services"
	"reelsnap/internal/stage"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.synthesis == nil || m.assembly == nil {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delay := m.pollInterval
		if err := m.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			delay = m.errorRetryInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// RunOnce performs a single scan-and-process pass. Per-job failures are
// contained and logged; only a failure to enumerate the job root or read the
// ledger is returned, since no pass is possible without either.
func (m *Manager) RunOnce(ctx context.Context) error {
	found, err := m.source.List(ctx)
	if err != nil {
		m.setLastError(err)
		if !errors.Is(err, context.Canceled) {
			m.logger.Error("job scan failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "scan_failed"),
				logging.String(logging.FieldErrorHint, "check that the job root exists and is readable"),
			)
		}
		return err
	}

	done, err := m.ledger.Completed()
	if err != nil {
		m.setLastError(err)
		m.logger.Error("ledger read failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scan_failed"),
			logging.String(logging.FieldErrorHint, "check ledger file permissions"),
		)
		return err
	}

	for _, job := range found {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := done[job.ID]; ok {
			continue
		}
		if err := m.processJob(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			// Contained: the next pass retries jobs that are still pending.
		}
	}
	return nil
}

func (m *Manager) processJob(ctx context.Context, job *jobs.Job) error {
	jobCtx := services.WithJobID(ctx, job.ID)
	logger := m.logger.With(logging.String(logging.FieldJobID, job.ID))
	m.setLastJobID(job.ID)

	started := time.Now()
	for _, stg := range []struct {
		name    string
		handler stage.Handler
	}{
		{"synthesis", m.synthesis},
		{"assembly", m.assembly},
	} {
		if err := m.runStage(jobCtx, logger, stg.name, stg.handler, job); err != nil {
			return err
		}
	}

	if err := m.ledger.Record(job.ID); err != nil {
		// The reel is published; only the completion record is missing. The
		// next pass re-renders and retries the append.
		m.setLastError(err)
		m.markFailed()
		logger.Error("completion record failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ledger_record_failed"),
			logging.String(logging.FieldErrorHint, "check ledger file permissions; the job will be reprocessed"),
		)
		return err
	}

	m.markProcessed()
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String("output_file", job.OutputPath),
		logging.Duration("total_duration", time.Since(started)),
	)
	if err := m.notifier.NotifyReelCompleted(jobCtx, job.ID, job.OutputPath); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	return nil
}

func (m *Manager) runStage(ctx context.Context, logger *slog.Logger, name string, handler stage.Handler, job *jobs.Job) error {
	stageCtx := services.WithStage(ctx, name)
	if err := handler.Prepare(stageCtx, job); err != nil {
		m.recordStageFailure(stageCtx, logger, name, job, err)
		return err
	}
	if err := handler.Execute(stageCtx, job); err != nil {
		m.recordStageFailure(stageCtx, logger, name, job, err)
		return err
	}
	return nil
}

func (m *Manager) recordStageFailure(ctx context.Context, logger *slog.Logger, name string, job *jobs.Job, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.setLastError(err)
	m.markFailed()
	logger.Error(name+" stage failed",
		logging.Error(err),
		logging.String(logging.FieldEventType, name+"_failed"),
		logging.String(logging.FieldStage, name),
		logging.Bool("retryable", services.Retryable(err)),
	)
	if notifyErr := m.notifier.NotifyJobFailed(ctx, job.ID, name, err); notifyErr != nil {
		logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
}
