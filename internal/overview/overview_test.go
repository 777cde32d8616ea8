package overview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"captiondesk/internal/api"
	"captiondesk/internal/logging"
	"captiondesk/internal/overview"
	"captiondesk/internal/queue"
)

type fakeSource struct {
	status      api.SystemStatus
	statusErr   error
	analytics   api.Analytics
	analyticErr error
	activity    []api.ActivityEntry
	activityErr error
	items       []queue.Item
	queueErr    error
}

func (f *fakeSource) SystemStatus(context.Context) (api.SystemStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeSource) Analytics(context.Context) (api.Analytics, error) {
	return f.analytics, f.analyticErr
}

func (f *fakeSource) Activity(context.Context) ([]api.ActivityEntry, error) {
	return f.activity, f.activityErr
}

func (f *fakeSource) ListQueue(context.Context) ([]queue.Item, error) {
	return f.items, f.queueErr
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(action string, offset time.Duration) api.ActivityEntry {
	at := base.Add(offset)
	return api.ActivityEntry{Action: action, Timestamp: at.Format(time.RFC3339), Status: "success", Time: at}
}

func TestFetchAllSections(t *testing.T) {
	source := &fakeSource{
		status:    api.SystemStatus{Whisper: true, GPT: true, Reported: []string{"whisper", "gpt"}},
		analytics: api.Analytics{TotalSubmissions: 12, PostsToday: 3},
		activity:  []api.ActivityEntry{entry("old", -time.Hour), entry("new", 0)},
		items: []queue.Item{
			{ID: "1", Status: queue.StatusPending},
			{ID: "2", Status: queue.StatusPending},
			{ID: "3", Status: queue.StatusPosted},
		},
	}
	agg := overview.New(overview.Options{Source: source, Logger: logging.NewNop(), Now: func() time.Time { return base }})
	snap := agg.Fetch(context.Background())

	if !snap.Healthy() {
		t.Fatalf("failures = %v", snap.Failures)
	}
	if !snap.Status.Whisper || snap.Status.Twitter {
		t.Fatalf("status = %+v", snap.Status)
	}
	if snap.Analytics.TotalSubmissions != 12 {
		t.Fatalf("analytics = %+v", snap.Analytics)
	}
	if snap.Activity[0].Action != "new" {
		t.Fatalf("activity not most recent first: %+v", snap.Activity)
	}
	if snap.Counts[queue.StatusPending] != 2 || snap.Counts[queue.StatusPosted] != 1 || snap.Counts[queue.StatusApproved] != 0 {
		t.Fatalf("counts = %v", snap.Counts)
	}
	if !snap.FetchedAt.Equal(base) {
		t.Fatalf("fetched at = %v", snap.FetchedAt)
	}
}

func TestFailingSectionsFallBack(t *testing.T) {
	boom := errors.New("backend unreachable")
	source := &fakeSource{
		statusErr:   boom,
		analytics:   api.Analytics{Accuracy: 0.9},
		activityErr: boom,
		queueErr:    boom,
	}
	snap := overview.New(overview.Options{Source: source, Logger: logging.NewNop()}).Fetch(context.Background())

	for _, section := range []overview.Section{overview.SectionStatus, overview.SectionActivity, overview.SectionQueue} {
		if !snap.Failed(section) {
			t.Fatalf("expected %s failure, got %v", section, snap.Failures)
		}
	}
	if snap.Failed(overview.SectionAnalytics) {
		t.Fatal("analytics should have loaded")
	}
	for _, name := range api.StatusServices {
		if snap.Status.Up(name) {
			t.Fatalf("%s should default to down", name)
		}
	}
	if snap.Activity == nil || len(snap.Activity) != 0 {
		t.Fatalf("activity = %#v", snap.Activity)
	}
	for _, status := range queue.AllStatuses() {
		if n, ok := snap.Counts[status]; !ok || n != 0 {
			t.Fatalf("counts = %v", snap.Counts)
		}
	}
	if snap.Analytics.Accuracy != 0.9 {
		t.Fatalf("analytics = %+v", snap.Analytics)
	}
}

func TestRecentActivityOrderAndLimit(t *testing.T) {
	entries := []api.ActivityEntry{
		{Action: "unparsed"},
		entry("a", -3*time.Minute),
		entry("b", -1*time.Minute),
		entry("c", -2*time.Minute),
	}
	got := overview.RecentActivity(entries, 3)
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i].Action != want[i] {
			t.Fatalf("order = %+v", got)
		}
	}
	if entries[0].Action != "unparsed" {
		t.Fatal("input must not be reordered")
	}
	all := overview.RecentActivity(entries, 0)
	if all[len(all)-1].Action != "unparsed" {
		t.Fatalf("unparsed should sort last: %+v", all)
	}
}

func TestDefaultActivityLimit(t *testing.T) {
	var entries []api.ActivityEntry
	for i := range 15 {
		entries = append(entries, entry("e", time.Duration(i)*time.Second))
	}
	snap := overview.New(overview.Options{Source: &fakeSource{activity: entries}, Logger: logging.NewNop()}).Fetch(context.Background())
	if len(snap.Activity) != overview.DefaultActivityLimit {
		t.Fatalf("activity len = %d", len(snap.Activity))
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	agg := overview.New(overview.Options{Source: &fakeSource{}, Logger: logging.NewNop()})
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := agg.Watch(ctx, 5*time.Millisecond, func(overview.Snapshot) {
		calls++
		if calls == 3 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestWatchWithoutIntervalFetchesOnce(t *testing.T) {
	agg := overview.New(overview.Options{Source: &fakeSource{}, Logger: logging.NewNop()})
	calls := 0
	if err := agg.Watch(context.Background(), 0, func(overview.Snapshot) { calls++ }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
