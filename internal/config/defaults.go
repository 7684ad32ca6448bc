package config

const (
	defaultJobRoot    = "~/.local/share/reelsnap/uploads"
	defaultReelsDir   = "~/.local/share/reelsnap/reels"
	defaultLogDir     = "~/.local/share/reelsnap/logs"
	defaultLedgerPath = "~/.local/share/reelsnap/done.txt"

	defaultTTSBaseURL        = "https://api.elevenlabs.io"
	defaultTTSVoiceID        = "21m00Tcm4TlvDq8ikWAM"
	defaultTTSModelID        = "eleven_multilingual_v2"
	defaultTTSTimeoutSeconds = 60

	defaultFFmpegBinary           = "ffmpeg"
	defaultAssemblyTimeoutSeconds = 300
	defaultFrameSeconds           = 2

	defaultServerBind  = "127.0.0.1:9000"
	defaultMaxUploadMB = 32

	defaultNotifyRequestTimeout = 10

	defaultPollInterval       = 5
	defaultErrorRetryInterval = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JobRoot:    defaultJobRoot,
			ReelsDir:   defaultReelsDir,
			LogDir:     defaultLogDir,
			LedgerPath: defaultLedgerPath,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			VoiceID:        defaultTTSVoiceID,
			ModelID:        defaultTTSModelID,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Assembly: Assembly{
			FFmpegBinary:   defaultFFmpegBinary,
			TimeoutSeconds: defaultAssemblyTimeoutSeconds,
			FrameSeconds:   defaultFrameSeconds,
		},
		Server: Server{
			Bind:        defaultServerBind,
			MaxUploadMB: defaultMaxUploadMB,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
