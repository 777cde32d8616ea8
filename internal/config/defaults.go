package config

const (
	defaultConfigPath          = "~/.config/captiondesk/config.toml"
	defaultAPIBaseURL          = "http://localhost:8000"
	defaultAPITimeoutSeconds   = 30
	defaultStoragePath         = "~/.local/share/captiondesk/state.db"
	defaultSubmissionTone      = "auto"
	defaultFFmpegCommand       = "ffmpeg"
	defaultRecorderInputFormat = "pulse"
	defaultRecorderInputDevice = "default"
	defaultRecorderSampleRate  = 16000
	defaultRecorderChannels    = 1
	defaultRecorderMaxSeconds  = 120
	defaultRecorderOutputDir   = "~/.local/share/captiondesk/recordings"
	defaultRecorderFormat      = "ogg"
	defaultActivityLimit       = 10
	defaultWatchIntervalSecond = 15
	defaultDevBackendBind      = "127.0.0.1:8000"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// EnvAPIURL overrides api.base_url.
	EnvAPIURL = "CAPTIONDESK_API_URL"
	// EnvToken seeds the bearer token.
	EnvToken = "CAPTIONDESK_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Storage: Storage{
			Path: defaultStoragePath,
		},
		Submission: Submission{
			DefaultTone: defaultSubmissionTone,
		},
		Recorder: Recorder{
			FFmpegCommand: defaultFFmpegCommand,
			InputFormat:   defaultRecorderInputFormat,
			InputDevice:   defaultRecorderInputDevice,
			SampleRate:    defaultRecorderSampleRate,
			Channels:      defaultRecorderChannels,
			MaxSeconds:    defaultRecorderMaxSeconds,
			OutputDir:     defaultRecorderOutputDir,
			Format:        defaultRecorderFormat,
		},
		Overview: Overview{
			ActivityLimit:       defaultActivityLimit,
			WatchIntervalSecond: defaultWatchIntervalSecond,
		},
		DevBackend: DevBackend{
			Bind: defaultDevBackendBind,
			Seed: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
