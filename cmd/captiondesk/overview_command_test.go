package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"captiondesk/internal/testsupport"
)

func TestOverviewWatchFlagTakesDuration(t *testing.T) {
	root := newRootCommand()
	cmd, rest, err := root.Find([]string{"overview", "--watch", "5s"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	got, err := cmd.Flags().GetDuration("watch")
	if err != nil {
		t.Fatalf("get watch: %v", err)
	}
	if got != 5*time.Second {
		t.Fatalf("watch = %s, want 5s", got)
	}
	if args := cmd.Flags().Args(); len(args) != 0 {
		t.Fatalf("unexpected positional args %v", args)
	}
}

func TestOverviewRejectsStrayArguments(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "overview", "5s"); err == nil {
		t.Fatal("expected positional argument to be rejected")
	}
}

// cancelAfterLines cancels once n newline-terminated writes have arrived.
type cancelAfterLines struct {
	mu     sync.Mutex
	buf    strings.Builder
	lines  int
	n      int
	cancel context.CancelFunc
}

func (w *cancelAfterLines) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	w.lines += strings.Count(string(p), "\n")
	if w.lines >= w.n {
		w.cancel()
	}
	return len(p), nil
}

func TestOverviewWatchStreamsJSONLines(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSeed())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out := &cancelAfterLines{n: 2, cancel: cancel}

	cmd := newRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&strings.Builder{})
	cmd.SetArgs([]string{"--config", env.configPath, "overview", "--watch", "10ms", "--json"})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("overview --watch: %v", err)
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	scanner := bufio.NewScanner(strings.NewReader(out.buf.String()))
	lines := 0
	for scanner.Scan() {
		var snap overviewOutput
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			t.Fatalf("line %d is not a JSON object: %v\n%s", lines, err, scanner.Text())
		}
		if snap.Counts["pending"] != 1 {
			t.Fatalf("unexpected counts %+v", snap.Counts)
		}
		lines++
	}
	if lines < 2 {
		t.Fatalf("expected at least 2 snapshots, got %d", lines)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestOverviewWatchStopsWhenOutputFails(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stderr strings.Builder
	cmd := newRootCommand()
	cmd.SetOut(brokenWriter{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", env.configPath, "overview", "--watch", "10ms", "--json"})
	err := cmd.ExecuteContext(ctx)
	if err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("expected write failure, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("watch kept running after the write failed")
	}
	requireContains(t, stderr.String(), "overview output failed")
}
