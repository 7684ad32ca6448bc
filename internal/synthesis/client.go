// Package synthesis narrates a job's description text through an
// ElevenLabs-compatible speech endpoint. The stage is a pure transformation
// from text to an audio file: no retries, no state between invocations, and
// no partially written artifact ever referenced by a success result.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelsnap/internal/config"
	"reelsnap/internal/services"
)

const stageName = "synthesis"

// SpeechClient converts text into an audio file at outPath.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Client calls the ElevenLabs text-to-speech HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	httpClient *http.Client
}

// NewClient builds a speech client from configuration.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.TTS.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.TTS.BaseURL,
		apiKey:     cfg.TTS.APIKey,
		voiceID:    cfg.TTS.VoiceID,
		modelID:    cfg.TTS.ModelID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// Synthesize sends text to the provider and writes the returned audio to
// outPath. The response is staged in a temp file and renamed into place only
// after it has been fully received, so a success result always references a
// complete artifact.
func (c *Client) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, stageName, "validate input", "description text is empty", nil)
	}
	if c.apiKey == "" {
		return services.Wrap(services.ErrConfiguration, stageName, "validate credentials", "tts.api_key is not set", nil)
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return services.Wrap(services.ErrTransient, stageName, "encode request", "", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return services.Wrap(services.ErrTimeout, stageName, "call provider", "speech request timed out", err)
		}
		return services.Wrap(services.ErrExternalTool, stageName, "call provider", "speech request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrExternalTool, stageName, "call provider",
			fmt.Sprintf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}

	if err := writeAudio(resp.Body, outPath); err != nil {
		if isTimeout(err) {
			return services.Wrap(services.ErrTimeout, stageName, "receive audio", "response stream timed out", err)
		}
		return services.Wrap(services.ErrTransient, stageName, "write audio", "", err)
	}
	return nil
}

func writeAudio(r io.Reader, outPath string) error {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".audio-*.partial")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, outPath)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
