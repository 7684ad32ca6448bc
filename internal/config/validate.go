package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.JobRoot == c.Paths.ReelsDir {
		return errors.New("paths.job_root and paths.reels_dir must differ")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelsnap/config.toml"
		}
		return fmt.Errorf("tts.api_key is required. Set ELEVENLABS_API_KEY env var or edit %s (create with 'reelsnap config init')", defaultPath)
	}
	if !strings.HasPrefix(c.TTS.BaseURL, "http://") && !strings.HasPrefix(c.TTS.BaseURL, "https://") {
		return fmt.Errorf("tts.base_url must be an http(s) URL, got %q", c.TTS.BaseURL)
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if strings.ContainsAny(c.Assembly.FFmpegBinary, " \t") {
		return fmt.Errorf("assembly.ffmpeg_binary must be a bare binary name or path, got %q", c.Assembly.FFmpegBinary)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
