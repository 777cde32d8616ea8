package main

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *syncBuffer, substr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(b.String(), substr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in %q", substr, b.String())
}

func TestStalledUploadReporterCollapsesBursts(t *testing.T) {
	var out syncBuffer
	progress, finish := stalledUploadReporter(&out, "Uploading", 20*time.Millisecond)
	defer finish()

	progress(10)
	progress(25)
	progress(40)
	waitFor(t, &out, "Uploading: 40%")
	if strings.Contains(out.String(), "10%") || strings.Contains(out.String(), "25%") {
		t.Fatalf("burst should collapse to the last value, got %q", out.String())
	}

	progress(100)
	waitFor(t, &out, "Uploading: sent, waiting for the backend")
}

func TestStalledUploadReporterFinishCancelsPending(t *testing.T) {
	var out syncBuffer
	progress, finish := stalledUploadReporter(&out, "Uploading", 30*time.Millisecond)

	progress(60)
	finish()
	time.Sleep(80 * time.Millisecond)
	if got := out.String(); got != "" {
		t.Fatalf("expected no report after finish, got %q", got)
	}
}

func TestUploadProgressNonTerminalUsesStallReports(t *testing.T) {
	var out syncBuffer
	progress, finish := uploadProgress(&out, "Uploading")
	defer finish()
	if progress == nil {
		t.Fatal("expected a progress callback for non-terminal writers")
	}
}
