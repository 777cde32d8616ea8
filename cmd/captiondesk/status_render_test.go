package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"captiondesk/internal/api"
	"captiondesk/internal/deps"
	"captiondesk/internal/overview"
	"captiondesk/internal/queue"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Database", statusError, "unreachable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Database:", "[DOWN] unreachable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Database", statusOK, "", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
	requireContains(t, got, "[UP]")
}

func TestBadge(t *testing.T) {
	display := queue.Display{Label: "Pending", Color: "yellow"}
	if got := badge(display, false); got != "Pending" {
		t.Fatalf("plain badge = %q", got)
	}
	if got := badge(display, true); got != ansiYellow+"Pending"+ansiReset {
		t.Fatalf("colored badge = %q", got)
	}
	if got := badge(queue.Display{Label: "Odd", Color: "chartreuse"}, true); got != "Odd" {
		t.Fatalf("unknown color badge = %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderOverviewMarksFailedSections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := overview.Snapshot{
		Status:    api.SystemStatus{Database: true, Reported: []string{"database"}},
		Analytics: api.Analytics{Accuracy: 0.94, TotalSubmissions: 12345},
		Activity: []api.ActivityEntry{
			{Action: "Item 4 approved", Status: "success", Time: now.Add(-5 * time.Minute)},
		},
		Counts: map[queue.Status]int{
			queue.StatusPending: 3,
		},
		Failures: map[overview.Section]error{
			overview.SectionQueue: &api.Error{Kind: api.KindBackend, Message: "queue offline"},
		},
	}

	var buf strings.Builder
	renderOverview(&buf, snap, now, false)
	out := buf.String()

	requireContains(t, out, "Database:")
	requireContains(t, out, "[UP]")
	requireContains(t, out, "[DOWN]")
	requireContains(t, out, "Accuracy:            94%")
	requireContains(t, out, "12,345")
	requireContains(t, out, "[WARN] unavailable: queue offline")
	requireContains(t, out, "Item 4 approved")
	requireContains(t, out, "5 minutes ago")
}

func TestPercent(t *testing.T) {
	cases := map[float64]float64{0: 0, 0.5: 50, 1: 100, 87: 87}
	for in, want := range cases {
		if got := percent(in); got != want {
			t.Fatalf("percent(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatCommandErrorPlain(t *testing.T) {
	if got := formatCommandError(errors.New("boom")); got != "Error: boom" {
		t.Fatalf("formatCommandError = %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	tools := []deps.Status{
		{Name: "FFmpeg", Command: "ffmpeg", Available: true},
		{Name: "Clipboard", Optional: true, Description: "Copies captions with --copy", Detail: "none of wl-copy found"},
		{Name: "Required", Command: "req"},
	}
	lines := dependencyLines(tools, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	requireContains(t, lines[0], "[UP] Ready (command: ffmpeg)")
	requireContains(t, lines[1], "[WARN] none of wl-copy found")
	requireContains(t, lines[2], "[DOWN] not available")
	requireContains(t, lines[3], "Clipboard (copies captions with --copy)")
}
