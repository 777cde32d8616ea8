package textutil

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFormatRelative(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds", now.Add(-30 * time.Second), "Just now"},
		{"one minute", now.Add(-61 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-59 * time.Minute), "59 minutes ago"},
		{"one hour", now.Add(-time.Hour), "1 hour ago"},
		{"hours", now.Add(-23 * time.Hour), "23 hours ago"},
		{"one day", now.Add(-25 * time.Hour), "1 day ago"},
		{"days", now.Add(-72 * time.Hour), "3 days ago"},
		{"future", now.Add(time.Hour), "Just now"},
		{"zero", time.Time{}, "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatRelative(tc.at, now); got != tc.want {
				t.Fatalf("FormatRelative = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateCaption(t *testing.T) {
	if err := ValidateCaption("hello world"); err != nil {
		t.Fatalf("expected valid caption, got %v", err)
	}

	err := ValidateCaption("   ")
	if !errors.Is(err, ErrCaptionEmpty) {
		t.Fatalf("expected empty error, got %v", err)
	}

	long := strings.Repeat("a", MaxCaptionLength+1)
	err = ValidateCaption(long)
	if !errors.Is(err, ErrCaptionTooLong) {
		t.Fatalf("expected too long error, got %v", err)
	}
	if !strings.Contains(err.Error(), "281/280") {
		t.Fatalf("expected length in message, got %q", err.Error())
	}

	exact := strings.Repeat("é", MaxCaptionLength)
	if err := ValidateCaption(exact); err != nil {
		t.Fatalf("multi-byte caption at limit should be valid: %v", err)
	}
}

func TestCaptionCounter(t *testing.T) {
	if got := CaptionCounter("abc"); got != "3/280" {
		t.Fatalf("unexpected counter %q", got)
	}
	if got := CaptionCounter(strings.Repeat("x", 300)); got != "300/280 (over limit)" {
		t.Fatalf("unexpected counter %q", got)
	}
	if !CaptionOverLimit(strings.Repeat("x", 281)) {
		t.Fatal("expected over limit")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abcdefghij", 4); got != "abcd..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := SingleLine("a\n b\t\tc "); got != "a b c" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestAudioFiles(t *testing.T) {
	if !IsValidAudioFile("clip.WAV") {
		t.Fatal("wav should be accepted")
	}
	if IsValidAudioFile("notes.txt") {
		t.Fatal("txt should be rejected")
	}
	if ct, _ := AudioContentType("x.m4a"); ct != "audio/m4a" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if got := FormatFileSize(1536); got != "1.5 KiB" {
		t.Fatalf("unexpected size %q", got)
	}
	if got := FormatFileSize(0); got != "0 B" {
		t.Fatalf("unexpected size %q", got)
	}
	name := RecordingFileName("Clinical Tone!", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), ".ogg")
	if name != "recording-clinical_tone-20250102T030405.ogg" {
		t.Fatalf("unexpected name %q", name)
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	var calls atomic.Int32
	var last atomic.Int32
	done := make(chan struct{}, 1)
	d := Debounce(func(v int) {
		calls.Add(1)
		last.Store(int32(v))
		done <- struct{}{}
	}, 20*time.Millisecond)

	for i := 1; i <= 5; i++ {
		d.Trigger(i)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never ran")
	}
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
	if last.Load() != 5 {
		t.Fatalf("expected last value 5, got %d", last.Load())
	}
}

func TestDebounceStop(t *testing.T) {
	var calls atomic.Int32
	d := Debounce(func(struct{}) { calls.Add(1) }, 50*time.Millisecond)
	if d.Stop() {
		t.Fatal("nothing pending yet")
	}
	d.Trigger(struct{}{})
	if !d.Stop() {
		t.Fatal("expected pending call to be stopped")
	}
	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("expected no calls, got %d", calls.Load())
	}
}
