// Package assembly renders a job's ordered images and narration into a
// single reel via an ffmpeg subprocess. ffmpeg is always invoked with an
// explicit argument vector; no user-controlled string ever reaches a shell.
// Output is staged next to the canonical path and renamed into place only on
// success, so a crash or failed encode never publishes a partial reel.
package assembly

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reelsnap/internal/config"
	"reelsnap/internal/fileutil"
	"reelsnap/internal/jobs"
	"reelsnap/internal/logging"
	"reelsnap/internal/services"
	"reelsnap/internal/stage"
)

const stageName = "assembly"

// Fixed render template: vertical 1080x1920, 30fps, H.264 video with AAC
// audio, clipped to the shorter of the image track and the narration.
const videoFilter = "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2:black"

// runCommand executes the prepared ffmpeg invocation. It is a package-level
// variable so tests can intercept the subprocess.
var runCommand = func(cmd *exec.Cmd) error { return cmd.Run() }

// SetRunCommandForTests overrides the subprocess runner during tests.
func SetRunCommandForTests(fn func(*exec.Cmd) error) func() {
	previous := runCommand
	runCommand = fn
	return func() {
		runCommand = previous
	}
}

// Stage renders reels through ffmpeg.
type Stage struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewStage builds the assembly stage.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	return &Stage{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, stageName),
	}
}

// Prepare validates the job's inputs and derives the canonical output path.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	if err := validateJobID(job.ID); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "validate input", err.Error(), nil)
	}
	if len(job.ImagePaths) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "validate input", "image list is empty", nil)
	}
	if strings.TrimSpace(job.AudioPath) == "" {
		return services.Wrap(services.ErrValidation, stageName, "validate input", "audio path is not set", nil)
	}
	file, err := os.Open(job.AudioPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "validate input", "audio file is not readable", err)
	}
	_ = file.Close()

	job.OutputPath = filepath.Join(s.cfg.Paths.ReelsDir, job.ID+".mp4")
	return nil
}

// Execute renders the reel. Re-invocation with identical inputs overwrites
// the canonical output deterministically, so a retry after a lost ledger
// write is safe.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	timeout := time.Duration(s.cfg.Assembly.TimeoutSeconds) * time.Second
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	manifestPath, cleanup, err := s.writeManifest(job)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageName, "write concat manifest", "", err)
	}
	defer cleanup()

	stagingPath := filepath.Join(s.cfg.Paths.ReelsDir, "."+job.ID+".mp4.partial")
	defer os.Remove(stagingPath)

	args := buildArgs(manifestPath, job.AudioPath, stagingPath)
	cmd := exec.CommandContext(runCtx, s.cfg.Assembly.FFmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	started := time.Now()
	if err := runCommand(cmd); err != nil {
		if runCtx.Err() != nil {
			return services.Wrap(services.ErrTimeout, stageName, "run encoder",
				fmt.Sprintf("ffmpeg killed after %s", timeout), runCtx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return services.Wrap(services.ErrExternalTool, stageName, "run encoder",
				fmt.Sprintf("ffmpeg exited with code %d: %s", exitErr.ExitCode(), stderrTail(&stderr)), nil)
		}
		return services.Wrap(services.ErrExternalTool, stageName, "run encoder", "ffmpeg failed to start", err)
	}

	if err := fileutil.RenameAtomic(stagingPath, job.OutputPath); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "publish output", "", err)
	}

	s.logger.Info("reel rendered",
		logging.String(logging.FieldEventType, "assembly_complete"),
		logging.String(logging.FieldJobID, job.ID),
		logging.String("output_file", job.OutputPath),
		logging.Int("images", len(job.ImagePaths)),
		logging.Duration("render_duration", time.Since(started)),
	)
	return nil
}

// HealthCheck reports whether the configured ffmpeg binary is resolvable.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if _, err := exec.LookPath(s.cfg.Assembly.FFmpegBinary); err != nil {
		return stage.Unhealthy(stageName, fmt.Sprintf("ffmpeg binary %q not found", s.cfg.Assembly.FFmpegBinary))
	}
	return stage.Healthy(stageName)
}

func (s *Stage) writeManifest(job *jobs.Job) (string, func(), error) {
	tmp, err := os.CreateTemp(job.Dir, ".concat-*.txt")
	if err != nil {
		return "", nil, err
	}
	path := tmp.Name()
	cleanup := func() { _ = os.Remove(path) }

	manifest := BuildManifest(job.ImagePaths, s.cfg.Assembly.FrameSeconds)
	if _, err := tmp.WriteString(manifest); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func buildArgs(manifestPath, audioPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-i", audioPath,
		"-vf", videoFilter,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-shortest",
		"-r", "30",
		"-pix_fmt", "yuv420p",
		outputPath,
	}
}

func validateJobID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("job id is empty")
	}
	if strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("job id %q contains path segments", id)
	}
	return nil
}

func stderrTail(buf *bytes.Buffer) string {
	const limit = 512
	out := strings.TrimSpace(buf.String())
	if len(out) > limit {
		out = "..." + out[len(out)-limit:]
	}
	if out == "" {
		return "(no stderr output)"
	}
	return out
}
