package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains connection settings for the captioning backend.
type API struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// Token seeds the credential store when it holds no token yet.
	Token string `toml:"token"`
}

// Storage contains the location of the local key-value store.
type Storage struct {
	Path string `toml:"path"`
}

// Submission contains defaults for new submissions.
type Submission struct {
	DefaultTone string `toml:"default_tone"`
}

// Recorder contains microphone capture settings.
type Recorder struct {
	FFmpegCommand string `toml:"ffmpeg_command"`
	InputFormat   string `toml:"input_format"`
	InputDevice   string `toml:"input_device"`
	SampleRate    int    `toml:"sample_rate"`
	Channels      int    `toml:"channels"`
	MaxSeconds    int    `toml:"max_seconds"`
	OutputDir     string `toml:"output_dir"`
	Format        string `toml:"format"`
}

// Clipboard contains the command used to copy captions.
type Clipboard struct {
	Command string `toml:"command"`
}

// Overview contains overview display settings.
type Overview struct {
	ActivityLimit       int `toml:"activity_limit"`
	WatchIntervalSecond int `toml:"watch_interval_seconds"`
}

// DevBackend contains settings for the local development backend.
type DevBackend struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
	Seed  bool   `toml:"seed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for captiondesk.
//
// Configuration sections by subsystem:
//   - API: backend base URL, request timeout, optional seed token
//   - Storage: local key-value store (credentials, remembered choices)
//   - Submission: default tone
//   - Recorder: ffmpeg microphone capture
//   - Clipboard: copy command override
//   - Overview: activity list bound and watch interval
//   - DevBackend: local in-memory backend for development
//   - Logging: log format, level, and optional file directory
type Config struct {
	API        API        `toml:"api"`
	Storage    Storage    `toml:"storage"`
	Submission Submission `toml:"submission"`
	Recorder   Recorder   `toml:"recorder"`
	Clipboard  Clipboard  `toml:"clipboard"`
	Overview   Overview   `toml:"overview"`
	DevBackend DevBackend `toml:"dev_backend"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("captiondesk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories local state is written to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Storage.Path), c.Recorder.OutputDir}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestTimeout returns the per-request upper bound for backend calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RecordingLimit returns the maximum length of a single recording.
func (c *Config) RecordingLimit() time.Duration {
	return time.Duration(c.Recorder.MaxSeconds) * time.Second
}

// WatchInterval returns the overview polling interval.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Overview.WatchIntervalSecond) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
