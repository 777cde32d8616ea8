package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"captiondesk/internal/api"
	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
)

var (
	// ErrActionUnavailable refuses an action the item's status does not offer.
	ErrActionUnavailable = errors.New("action not available for this item")
	// ErrBusy refuses a command while another command for the same item runs.
	ErrBusy = errors.New("another command for this item is still running")
	// ErrUnknownItem is returned for ids absent from the current snapshot.
	ErrUnknownItem = errors.New("item not found in the current queue")
	// ErrNoEdit is returned when saving or changing an edit that was not begun.
	ErrNoEdit = errors.New("no edit in progress for this item")
	// ErrStale accompanies a successful command whose follow-up refresh failed.
	ErrStale = errors.New("queue snapshot could not be refreshed")
)

// Backend is the slice of the API client the Board needs.
type Backend interface {
	ListQueue(ctx context.Context) ([]queue.Item, error)
	Approve(ctx context.Context, id queue.ID) (api.MutationResult, error)
	Reject(ctx context.Context, id queue.ID) (api.MutationResult, error)
	PostNow(ctx context.Context, id queue.ID) (api.MutationResult, error)
	UpdateItem(ctx context.Context, id queue.ID, update api.ItemUpdate) (api.MutationResult, error)
	Delete(ctx context.Context, id queue.ID) error
}

// Anomaly is an observed status change the lifecycle does not allow.
type Anomaly struct {
	ID         queue.ID
	From       queue.Status
	To         queue.Status
	Removed    bool
	ObservedAt time.Time
}

func (a Anomaly) String() string {
	if a.Removed {
		return fmt.Sprintf("item %s disappeared while %s", a.ID, a.From)
	}
	return fmt.Sprintf("item %s moved %s -> %s", a.ID, a.From, a.To)
}

// Board is the moderation queue state machine. It is safe for concurrent use.
type Board struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	loaded    bool
	partition queue.Partition
	fetchedAt time.Time
	observed  map[queue.ID]queue.Status
	deleted   map[queue.ID]struct{}
	inflight  map[queue.ID]queue.Action
	edits     map[queue.ID]*Edit
	anomalies []Anomaly
}

// NewBoard returns an empty Board.
func NewBoard(backend Backend, logger *slog.Logger) *Board {
	return &Board{
		backend:  backend,
		logger:   logging.NewComponentLogger(logger, "moderation"),
		now:      time.Now,
		observed: make(map[queue.ID]queue.Status),
		deleted:  make(map[queue.ID]struct{}),
		inflight: make(map[queue.ID]queue.Action),
		edits:    make(map[queue.ID]*Edit),
	}
}

// Refresh fetches the full queue and replaces the snapshot. On failure the
// previous snapshot is kept. Concurrent refreshes are not ordered: the last
// one to resolve wins.
func (b *Board) Refresh(ctx context.Context) (queue.Partition, error) {
	items, err := b.backend.ListQueue(ctx)
	if err != nil {
		b.logger.Warn("queue refresh failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_refresh_failed"),
			logging.String(logging.FieldErrorHint, "the previous snapshot is still shown; refresh again"),
		)
		return queue.Partition{}, err
	}
	partition := queue.PartitionItems(items)

	b.mu.Lock()
	anomalies := b.reconcileLocked(partition)
	b.partition = partition
	b.loaded = true
	b.fetchedAt = b.now()
	b.mu.Unlock()

	for _, anomaly := range anomalies {
		b.logger.Warn("illegal status change observed",
			logging.Alert("illegal_transition"),
			logging.String(logging.FieldItemID, anomaly.ID.String()),
			logging.String("from", string(anomaly.From)),
			logging.String("to", string(anomaly.To)),
			logging.Bool("removed", anomaly.Removed),
		)
	}
	b.logger.Debug("queue refreshed", logging.Int("items", len(partition.All)))
	return clonePartition(partition), nil
}

// reconcileLocked compares a new snapshot with the last observed statuses.
func (b *Board) reconcileLocked(next queue.Partition) []Anomaly {
	var found []Anomaly
	now := b.now()
	seen := make(map[queue.ID]queue.Status, len(next.All))
	for _, item := range next.All {
		seen[item.ID] = item.Status
		prev, ok := b.observed[item.ID]
		if !ok {
			continue
		}
		if err := queue.CheckTransition(item.ID, prev, item.Status); err != nil {
			found = append(found, Anomaly{ID: item.ID, From: prev, To: item.Status, ObservedAt: now})
		}
	}
	for id, prev := range b.observed {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := b.deleted[id]; ok {
			continue
		}
		if prev == queue.StatusPosted {
			found = append(found, Anomaly{ID: id, From: prev, Removed: true, ObservedAt: now})
		}
	}
	b.observed = seen
	b.deleted = make(map[queue.ID]struct{})
	b.anomalies = append(b.anomalies, found...)
	return found
}

// Loaded reports whether a snapshot has been fetched.
func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// FetchedAt returns when the current snapshot resolved.
func (b *Board) FetchedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetchedAt
}

// Snapshot returns a copy of the current partition.
func (b *Board) Snapshot() queue.Partition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clonePartition(b.partition)
}

// View returns a copy of the items in v.
func (b *Board) View(v queue.View) []queue.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]queue.Item(nil), b.partition.View(v)...)
}

// Item returns one item from the current snapshot.
func (b *Board) Item(id queue.ID) (queue.Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.partition.Find(id)
}

// Anomalies returns every illegal transition observed so far.
func (b *Board) Anomalies() []Anomaly {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Anomaly(nil), b.anomalies...)
}

// Busy reports whether a command for id is running.
func (b *Board) Busy(id queue.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.inflight[id]
	return ok
}

// Available returns the actions offered for id in the current snapshot.
func (b *Board) Available(id queue.ID) ([]queue.Action, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.partition.Find(id)
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrUnknownItem)
	}
	return queue.AvailableActions(item.Status), nil
}

func clonePartition(p queue.Partition) queue.Partition {
	return queue.Partition{
		Pending:  append([]queue.Item(nil), p.Pending...),
		Approved: append([]queue.Item(nil), p.Approved...),
		Posted:   append([]queue.Item(nil), p.Posted...),
		All:      append([]queue.Item(nil), p.All...),
	}
}
