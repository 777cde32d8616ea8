package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"captiondesk/internal/config"
)

func TestLoadDefaultConfigUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvToken, "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false, got true (path=%s)", resolved)
	}
	if want := filepath.Join(tempHome, ".config", "captiondesk", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.RequestTimeout())
	}
	if want := filepath.Join(tempHome, ".local", "share", "captiondesk", "state.db"); cfg.Storage.Path != want {
		t.Fatalf("unexpected storage path: got %q want %q", cfg.Storage.Path, want)
	}
	if cfg.Overview.ActivityLimit != 10 {
		t.Fatalf("unexpected activity limit %d", cfg.Overview.ActivityLimit)
	}
	if cfg.Submission.DefaultTone != "auto" {
		t.Fatalf("unexpected default tone %q", cfg.Submission.DefaultTone)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvToken, "")

	configPath := filepath.Join(t.TempDir(), "captiondesk.toml")
	content := `[api]
base_url = "https://captions.example.com/"
timeout_seconds = 5

[storage]
path = "~/state/desk.db"

[submission]
default_tone = "Clinical"

[recorder]
format = ".wav"
max_seconds = 30

[logging]
format = "JSON"
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.API.BaseURL != "https://captions.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.RequestTimeout())
	}
	if want := filepath.Join(tempHome, "state", "desk.db"); cfg.Storage.Path != want {
		t.Fatalf("unexpected storage path: got %q want %q", cfg.Storage.Path, want)
	}
	if cfg.Submission.DefaultTone != "clinical" {
		t.Fatalf("unexpected tone %q", cfg.Submission.DefaultTone)
	}
	if cfg.Recorder.Format != "wav" || cfg.RecordingLimit() != 30*time.Second {
		t.Fatalf("unexpected recorder settings %+v", cfg.Recorder)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings %+v", cfg.Logging)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvAPIURL, "http://10.0.0.5:9000/")
	t.Setenv(config.EnvToken, " secret ")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:9000" {
		t.Fatalf("expected env base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "secret" {
		t.Fatalf("expected env token, got %q", cfg.API.Token)
	}
}

func TestDotEnvIsLoaded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	// Registered so the variables godotenv sets are restored after the test.
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvToken, "")
	os.Unsetenv(config.EnvAPIURL)
	os.Unsetenv(config.EnvToken)

	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CAPTIONDESK_API_URL=https://dotenv.example.com\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://dotenv.example.com" {
		t.Fatalf("expected .env base url, got %q", cfg.API.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"scheme", func(c *config.Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"host", func(c *config.Config) { c.API.BaseURL = "http://" }, "host"},
		{"tone", func(c *config.Config) { c.Submission.DefaultTone = "sarcastic" }, "default_tone"},
		{"format", func(c *config.Config) { c.Recorder.Format = "flac" }, "recorder.format"},
		{"level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvToken, "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.DevBackend.Bind != "127.0.0.1:8000" || !cfg.DevBackend.Seed {
		t.Fatalf("unexpected dev backend settings %+v", cfg.DevBackend)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(base, "data", "state.db")
	cfg.Recorder.OutputDir = filepath.Join(base, "recordings")
	cfg.Logging.Dir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "data"), cfg.Recorder.OutputDir, cfg.Logging.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
