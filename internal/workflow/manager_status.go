package workflow

import (
	"context"

	"reelsnap/internal/logging"
	"reelsnap/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastJobID   string
	Pending     int
	Completed   int
	Processed   int
	Failed      int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information. Pending and Completed are
// computed from a fresh scan so the summary reflects the directory as it is
// now, not as it was at the last pass.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:   m.running,
		LastJobID: m.lastJobID,
		Processed: m.processed,
		Failed:    m.failed,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	m.mu.RUnlock()

	done, err := m.ledger.Completed()
	if err != nil {
		m.logger.Warn("failed to read ledger for status", logging.Error(err))
	} else {
		summary.Completed = len(done)
	}

	if found, err := m.source.List(ctx); err != nil {
		m.logger.Warn("failed to scan job root for status", logging.Error(err))
	} else {
		for _, job := range found {
			if _, ok := done[job.ID]; !ok {
				summary.Pending++
			}
		}
	}

	summary.StageHealth = map[string]stage.Health{}
	for name, handler := range map[string]stage.Handler{
		"synthesis": m.synthesis,
		"assembly":  m.assembly,
	} {
		if handler == nil {
			continue
		}
		summary.StageHealth[name] = handler.HealthCheck(ctx)
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJobID(id string) {
	m.mu.Lock()
	m.lastJobID = id
	m.mu.Unlock()
}

func (m *Manager) markProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *Manager) markFailed() {
	m.mu.Lock()
	m.failed++
	m.mu.Unlock()
}
