package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var knownTones = []string{"auto", "mixed", "cruel", "clinical", "teasing", "possessive"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSubmission(); err != nil {
		return err
	}
	if err := c.validateRecorder(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", c.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url must include a host, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds > 600 {
		return errors.New("api.timeout_seconds must be at most 600")
	}
	return nil
}

func (c *Config) validateSubmission() error {
	if !slices.Contains(knownTones, c.Submission.DefaultTone) {
		return fmt.Errorf("submission.default_tone %q is not a known tone", c.Submission.DefaultTone)
	}
	return nil
}

func (c *Config) validateRecorder() error {
	switch c.Recorder.Format {
	case "ogg", "wav", "mp3", "webm", "m4a":
	default:
		return fmt.Errorf("recorder.format %q is not supported", c.Recorder.Format)
	}
	if c.Recorder.Channels > 2 {
		return errors.New("recorder.channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}
