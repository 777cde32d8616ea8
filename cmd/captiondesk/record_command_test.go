package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"captiondesk/internal/api"
	"captiondesk/internal/testsupport"
)

const fakeFFmpeg = `out=""
for a in "$@"; do out="$a"; done
printf 'OggS-fake-audio' > "$out"
`

func stubFFmpeg(t *testing.T, env *cliTestEnv) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	testsupport.StubBinaries(t, filepath.Join(env.baseDir, "bin"), fakeFFmpeg, "ffmpeg")
}

func recordingsOnDisk(t *testing.T, env *cliTestEnv) []string {
	t.Helper()
	entries, err := os.ReadDir(env.cfg.Recorder.OutputDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read recordings dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Join(env.cfg.Recorder.OutputDir, e.Name()))
	}
	return names
}

func TestRecordSubmitsAndRemovesRecording(t *testing.T) {
	env := setupCLITestEnv(t)
	stubFFmpeg(t, env)

	out, stderr, err := runCLI(t, env, "record", "--tone", "teasing")
	if err != nil {
		t.Fatalf("record: %v\n%s", err, stderr)
	}
	requireContains(t, stderr, "Recorded ")
	requireContains(t, out, "Queue ID:      1")
	if left := recordingsOnDisk(t, env); len(left) != 0 {
		t.Fatalf("expected recording removed after submit, found %v", left)
	}
}

func TestRecordKeepLeavesFile(t *testing.T) {
	env := setupCLITestEnv(t)
	stubFFmpeg(t, env)

	_, stderr, err := runCLI(t, env, "record", "--keep")
	if err != nil {
		t.Fatalf("record --keep: %v", err)
	}
	left := recordingsOnDisk(t, env)
	if len(left) != 1 {
		t.Fatalf("expected one kept recording, found %v", left)
	}
	requireContains(t, stderr, "Recording kept at "+left[0])
}

func TestRecordKeepsFileWhenSubmitFails(t *testing.T) {
	env := setupCLITestEnv(t)
	stubFFmpeg(t, env)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"gateway down"}`))
	}))
	t.Cleanup(failing.Close)
	env.cfg.API.BaseURL = failing.URL
	writeTestConfig(t, env.configPath, env.cfg)

	_, stderr, err := runCLI(t, env, "record")
	if err == nil {
		t.Fatal("expected submit failure")
	}
	if api.KindOf(err) != api.KindBackend || api.Message(err) != "gateway down" {
		t.Fatalf("unexpected error %v", err)
	}
	left := recordingsOnDisk(t, env)
	if len(left) != 1 {
		t.Fatalf("expected the recording to survive a failed submit, found %v", left)
	}
	requireContains(t, stderr, "Recording kept at "+left[0]+"; retry with captiondesk submit audio "+left[0])

	env.cfg.API.BaseURL = env.backend.URL
	writeTestConfig(t, env.configPath, env.cfg)
	if _, _, err := runCLI(t, env, "submit", "audio", left[0]); err != nil {
		t.Fatalf("retry with kept recording: %v", err)
	}
}
