package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeSubmission()
	if err := c.normalizeRecorder(); err != nil {
		return err
	}
	c.normalizeOverview()
	c.normalizeDevBackend()
	return c.normalizeLogging()
}

func (c *Config) normalizeAPI() {
	if value, ok := os.LookupEnv(EnvAPIURL); ok && strings.TrimSpace(value) != "" {
		c.API.BaseURL = value
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv(EnvToken); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeStorage() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		c.Storage.Path = defaultStoragePath
	}
	var err error
	if c.Storage.Path, err = expandPath(c.Storage.Path); err != nil {
		return fmt.Errorf("storage.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSubmission() {
	c.Submission.DefaultTone = strings.ToLower(strings.TrimSpace(c.Submission.DefaultTone))
	if c.Submission.DefaultTone == "" {
		c.Submission.DefaultTone = defaultSubmissionTone
	}
}

func (c *Config) normalizeRecorder() error {
	c.Recorder.FFmpegCommand = strings.TrimSpace(c.Recorder.FFmpegCommand)
	if c.Recorder.FFmpegCommand == "" {
		c.Recorder.FFmpegCommand = defaultFFmpegCommand
	}
	c.Recorder.InputFormat = strings.TrimSpace(c.Recorder.InputFormat)
	if c.Recorder.InputFormat == "" {
		c.Recorder.InputFormat = defaultRecorderInputFormat
	}
	c.Recorder.InputDevice = strings.TrimSpace(c.Recorder.InputDevice)
	if c.Recorder.InputDevice == "" {
		c.Recorder.InputDevice = defaultRecorderInputDevice
	}
	if c.Recorder.SampleRate <= 0 {
		c.Recorder.SampleRate = defaultRecorderSampleRate
	}
	if c.Recorder.Channels <= 0 {
		c.Recorder.Channels = defaultRecorderChannels
	}
	if c.Recorder.MaxSeconds <= 0 {
		c.Recorder.MaxSeconds = defaultRecorderMaxSeconds
	}
	c.Recorder.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Recorder.Format), "."))
	if c.Recorder.Format == "" {
		c.Recorder.Format = defaultRecorderFormat
	}
	if strings.TrimSpace(c.Recorder.OutputDir) == "" {
		c.Recorder.OutputDir = defaultRecorderOutputDir
	}
	var err error
	if c.Recorder.OutputDir, err = expandPath(c.Recorder.OutputDir); err != nil {
		return fmt.Errorf("recorder.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOverview() {
	if c.Overview.ActivityLimit <= 0 {
		c.Overview.ActivityLimit = defaultActivityLimit
	}
	if c.Overview.WatchIntervalSecond <= 0 {
		c.Overview.WatchIntervalSecond = defaultWatchIntervalSecond
	}
}

func (c *Config) normalizeDevBackend() {
	c.DevBackend.Bind = strings.TrimSpace(c.DevBackend.Bind)
	if c.DevBackend.Bind == "" {
		c.DevBackend.Bind = defaultDevBackendBind
	}
	c.DevBackend.Token = strings.TrimSpace(c.DevBackend.Token)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
