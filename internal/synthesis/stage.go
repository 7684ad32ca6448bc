package synthesis

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"reelsnap/internal/config"
	"reelsnap/internal/jobs"
	"reelsnap/internal/logging"
	"reelsnap/internal/services"
	"reelsnap/internal/stage"
)

// Stage adapts the speech client to the pipeline stage contract.
type Stage struct {
	cfg    *config.Config
	client SpeechClient
	logger *slog.Logger
}

// NewStage builds the synthesis stage with the HTTP-backed speech client.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	return NewStageWithClient(cfg, NewClient(cfg), logger)
}

// NewStageWithClient builds the synthesis stage with a custom client (used in tests).
func NewStageWithClient(cfg *config.Config, client SpeechClient, logger *slog.Logger) *Stage {
	return &Stage{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, stageName),
	}
}

// Prepare validates the job's text and derives the audio artifact path.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	if strings.TrimSpace(job.Description) == "" {
		return services.Wrap(services.ErrValidation, stageName, "validate input", "description text is empty", nil)
	}
	job.AudioPath = filepath.Join(job.Dir, jobs.AudioFile)
	return nil
}

// Execute narrates the description into the job's audio path.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	if err := s.client.Synthesize(ctx, job.Description, job.AudioPath); err != nil {
		return err
	}
	s.logger.Info("narration synthesized",
		logging.String(logging.FieldEventType, "synthesis_complete"),
		logging.String(logging.FieldJobID, job.ID),
		logging.String("audio_file", job.AudioPath),
	)
	return nil
}

// HealthCheck reports whether the provider is usable with the current configuration.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if strings.TrimSpace(s.cfg.TTS.APIKey) == "" {
		return stage.Unhealthy(stageName, "tts.api_key is not configured")
	}
	return stage.Healthy(stageName)
}
