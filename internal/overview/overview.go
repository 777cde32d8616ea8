// Package overview aggregates the dashboard shown alongside the queue:
// dependency health, analytics, recent activity, and queue counts. Each
// section is fetched independently so one failing endpoint never blanks the
// others.
package overview

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"captiondesk/internal/api"
	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
)

// DefaultActivityLimit bounds the activity list when no limit is configured.
const DefaultActivityLimit = 10

// Section names one independently fetched part of the overview.
type Section string

const (
	SectionStatus    Section = "status"
	SectionAnalytics Section = "analytics"
	SectionActivity  Section = "activity"
	SectionQueue     Section = "queue"
)

// Source is the slice of the API client the overview reads from.
type Source interface {
	SystemStatus(ctx context.Context) (api.SystemStatus, error)
	Analytics(ctx context.Context) (api.Analytics, error)
	Activity(ctx context.Context) ([]api.ActivityEntry, error)
	ListQueue(ctx context.Context) ([]queue.Item, error)
}

// Snapshot is one aggregated read. Sections that failed hold their zero
// value and have an entry in Failures.
type Snapshot struct {
	Status    api.SystemStatus
	Analytics api.Analytics
	Activity  []api.ActivityEntry
	Counts    map[queue.Status]int
	Failures  map[Section]error
	FetchedAt time.Time
}

// Healthy reports whether every section loaded.
func (s Snapshot) Healthy() bool {
	return len(s.Failures) == 0
}

// Failed reports whether section failed to load.
func (s Snapshot) Failed(section Section) bool {
	_, ok := s.Failures[section]
	return ok
}

// Options configures an Aggregator.
type Options struct {
	Source        Source
	Logger        *slog.Logger
	ActivityLimit int
	Now           func() time.Time
}

// Aggregator builds Snapshots.
type Aggregator struct {
	source Source
	logger *slog.Logger
	limit  int
	now    func() time.Time
}

// New constructs an Aggregator.
func New(opts Options) *Aggregator {
	limit := opts.ActivityLimit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		source: opts.Source,
		logger: logging.NewComponentLogger(opts.Logger, "overview"),
		limit:  limit,
		now:    now,
	}
}

// Fetch loads all sections concurrently and never fails as a whole.
func (a *Aggregator) Fetch(ctx context.Context) Snapshot {
	snap := Snapshot{
		Counts:   emptyCounts(),
		Activity: []api.ActivityEntry{},
		Failures: make(map[Section]error),
	}
	var mu sync.Mutex
	fail := func(section Section, err error) {
		mu.Lock()
		snap.Failures[section] = err
		mu.Unlock()
		a.logger.Warn("overview section unavailable",
			logging.String("section", string(section)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "overview_section_failed"),
			logging.String(logging.FieldImpact, "section shows defaults"),
		)
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		status, err := a.source.SystemStatus(ctx)
		if err != nil {
			fail(SectionStatus, err)
			return
		}
		mu.Lock()
		snap.Status = status
		mu.Unlock()
	})
	wg.Go(func() {
		analytics, err := a.source.Analytics(ctx)
		if err != nil {
			fail(SectionAnalytics, err)
			return
		}
		mu.Lock()
		snap.Analytics = analytics
		mu.Unlock()
	})
	wg.Go(func() {
		entries, err := a.source.Activity(ctx)
		if err != nil {
			fail(SectionActivity, err)
			return
		}
		recent := RecentActivity(entries, a.limit)
		mu.Lock()
		snap.Activity = recent
		mu.Unlock()
	})
	wg.Go(func() {
		items, err := a.source.ListQueue(ctx)
		if err != nil {
			fail(SectionQueue, err)
			return
		}
		counts := queue.PartitionItems(items).Counts()
		mu.Lock()
		for status, n := range counts {
			snap.Counts[status] = n
		}
		mu.Unlock()
	})
	wg.Wait()

	snap.FetchedAt = a.now()
	return snap
}

// Watch fetches immediately and then every interval until ctx is done,
// handing each snapshot to fn.
func (a *Aggregator) Watch(ctx context.Context, interval time.Duration, fn func(Snapshot)) error {
	if interval <= 0 {
		fn(a.Fetch(ctx))
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		fn(a.Fetch(ctx))
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RecentActivity orders entries most recent first and keeps at most limit.
// Entries whose timestamp could not be parsed sort last in their original
// order.
func RecentActivity(entries []api.ActivityEntry, limit int) []api.ActivityEntry {
	out := append([]api.ActivityEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Time, out[j].Time
		if ti.IsZero() || tj.IsZero() {
			return !ti.IsZero() && tj.IsZero()
		}
		return ti.After(tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []api.ActivityEntry{}
	}
	return out
}

func emptyCounts() map[queue.Status]int {
	counts := make(map[queue.Status]int)
	for _, status := range queue.AllStatuses() {
		counts[status] = 0
	}
	return counts
}
