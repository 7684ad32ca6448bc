package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelsnap/internal/config"
)

const userAgent = "Reelsnap-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyReelCompleted(ctx context.Context, jobID, outputFile string) error
	NotifyJobFailed(ctx context.Context, jobID, stageName string, cause error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyReelCompleted(ctx context.Context, jobID, outputFile string) error {
	jobID = strings.TrimSpace(jobID)
	outputFile = strings.TrimSpace(outputFile)
	message := fmt.Sprintf("Reel ready: %s", jobID)
	if outputFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputFile)
	}
	data := payload{
		title:    "Reelsnap - Reel Complete",
		message:  message,
		tags:     []string{"reelsnap", "reel", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, jobID, stageName string, cause error) error {
	var builder strings.Builder
	builder.WriteString("Job failed")
	if jobID = strings.TrimSpace(jobID); jobID != "" {
		builder.WriteString(": ")
		builder.WriteString(jobID)
	}
	if stageName = strings.TrimSpace(stageName); stageName != "" {
		builder.WriteString(" (")
		builder.WriteString(stageName)
		builder.WriteString(")")
	}
	builder.WriteString("\n")
	if cause != nil {
		builder.WriteString(strings.TrimSpace(cause.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "Reelsnap - Job Failed",
		message:  builder.String(),
		tags:     []string{"reelsnap", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Reelsnap - Test",
		message:  "Notification system test",
		tags:     []string{"reelsnap", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyReelCompleted(context.Context, string, string) error    { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
