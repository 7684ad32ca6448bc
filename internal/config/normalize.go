package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeAssembly()
	c.normalizeServer()
	c.normalizeNotifications()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.JobRoot) == "" {
		c.Paths.JobRoot = defaultJobRoot
	}
	if c.Paths.JobRoot, err = expandPath(c.Paths.JobRoot); err != nil {
		return fmt.Errorf("paths.job_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReelsDir) == "" {
		c.Paths.ReelsDir = defaultReelsDir
	}
	if c.Paths.ReelsDir, err = expandPath(c.Paths.ReelsDir); err != nil {
		return fmt.Errorf("paths.reels_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaultLedgerPath
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTTS() {
	if strings.TrimSpace(c.TTS.APIKey) == "" {
		if env, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
			c.TTS.APIKey = env
		}
	}
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	c.TTS.BaseURL = strings.TrimRight(strings.TrimSpace(c.TTS.BaseURL), "/")
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	if strings.TrimSpace(c.TTS.VoiceID) == "" {
		c.TTS.VoiceID = defaultTTSVoiceID
	}
	if strings.TrimSpace(c.TTS.ModelID) == "" {
		c.TTS.ModelID = defaultTTSModelID
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeAssembly() {
	if strings.TrimSpace(c.Assembly.FFmpegBinary) == "" {
		c.Assembly.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Assembly.TimeoutSeconds <= 0 {
		c.Assembly.TimeoutSeconds = defaultAssemblyTimeoutSeconds
	}
	if c.Assembly.FrameSeconds <= 0 {
		c.Assembly.FrameSeconds = defaultFrameSeconds
	}
}

func (c *Config) normalizeServer() {
	if strings.TrimSpace(c.Server.Bind) == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = defaultMaxUploadMB
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = defaultPollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
