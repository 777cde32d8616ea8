package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"captiondesk/internal/testsupport"
)

func TestOverviewJSON(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSeed())

	out, _, err := runCLI(t, env, "overview", "--json")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	var snap overviewOutput
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if !snap.Status["database"] || snap.Status["twitter"] {
		t.Fatalf("unexpected status %+v", snap.Status)
	}
	if snap.Analytics.TotalSubmissions != 4 {
		t.Fatalf("expected 4 submissions, got %d", snap.Analytics.TotalSubmissions)
	}
	for _, status := range []string{"pending", "approved", "rejected", "posted"} {
		if snap.Counts[status] != 1 {
			t.Fatalf("expected 1 %s item, got %d", status, snap.Counts[status])
		}
	}
	if len(snap.Activity) == 0 {
		t.Fatal("expected activity entries")
	}
	if len(snap.Failures) != 0 {
		t.Fatalf("unexpected failures %+v", snap.Failures)
	}
}

func TestOverviewText(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSeed())

	out, _, err := runCLI(t, env, "overview")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	requireContains(t, out, "== System Status ==")
	requireContains(t, out, "== Analytics ==")
	requireContains(t, out, "== Recent Activity ==")
	requireContains(t, out, "Development backend seeded")
}

func TestSettingsSetAndGet(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "settings", "set", "auto_approve=true", "post_interval=30", "caption_prefix=LIVE")
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	requireContains(t, out, "Updated 3 setting(s)")

	out, _, err = runCLI(t, env, "settings", "get", "--json", "auto_approve", "post_interval", "caption_prefix")
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	var settings map[string]any
	if err := json.Unmarshal([]byte(out), &settings); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if settings["auto_approve"] != true || settings["post_interval"] != float64(30) || settings["caption_prefix"] != "LIVE" {
		t.Fatalf("unexpected settings %+v", settings)
	}

	if _, _, err := runCLI(t, env, "settings", "get", "no_such_key"); err == nil {
		t.Fatal("expected unknown setting error")
	}
}

func TestParseSettingAssignments(t *testing.T) {
	changes, err := parseSettingAssignments([]string{"a=1", "b=true", "c=hello world", `d="quoted"`, "e="})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if changes["a"] != float64(1) || changes["b"] != true || changes["c"] != "hello world" || changes["d"] != "quoted" || changes["e"] != "" {
		t.Fatalf("unexpected changes %+v", changes)
	}
	if _, err := parseSettingAssignments([]string{"novalue"}); err == nil {
		t.Fatal("expected error for missing =")
	}
	if _, err := parseSettingAssignments([]string{"=1"}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestTonesOfflineJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "tones", "--offline", "--json")
	if err != nil {
		t.Fatalf("tones: %v", err)
	}
	var tones []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &tones); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(tones) == 0 || tones[0].ID == "" {
		t.Fatalf("unexpected tones %+v", tones)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "captiondesk.toml")

	out, _, err := runCLI(t, nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, _, err := runCLI(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected existing config error")
	}
	if _, _, err := runCLI(t, nil, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.API.Token = "config-token-value"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	out, _, err = runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.backend.URL)
	requireContains(t, out, "conf********alue")
	requireNotContains(t, out, "config-token-value")
}

func TestAPIURLFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "--api-url", "http://127.0.0.1:1", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "http://127.0.0.1:1")
}

func TestDoctorReportsBackendAndTools(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "== Backend ==")
	requireContains(t, out, env.backend.URL)
	requireContains(t, out, "[UP] reachable")
	requireContains(t, out, "Token:")
	requireContains(t, out, "== Local Tools ==")
	requireContains(t, out, "Clipboard:")
	requireContains(t, out, "Ready (command: cat)")
}
