package moderation

import (
	"context"
	"fmt"

	"captiondesk/internal/api"
	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
)

// Approve approves a pending item.
func (b *Board) Approve(ctx context.Context, id queue.ID) (api.MutationResult, error) {
	return b.run(ctx, id, queue.ActionApprove, func(ctx context.Context) (api.MutationResult, error) {
		return b.backend.Approve(ctx, id)
	})
}

// Reject rejects a pending item.
func (b *Board) Reject(ctx context.Context, id queue.ID) (api.MutationResult, error) {
	return b.run(ctx, id, queue.ActionReject, func(ctx context.Context) (api.MutationResult, error) {
		return b.backend.Reject(ctx, id)
	})
}

// Post publishes a pending or approved item.
func (b *Board) Post(ctx context.Context, id queue.ID) (api.MutationResult, error) {
	return b.run(ctx, id, queue.ActionPost, func(ctx context.Context) (api.MutationResult, error) {
		return b.backend.PostNow(ctx, id)
	})
}

// Delete removes an item regardless of status.
func (b *Board) Delete(ctx context.Context, id queue.ID) error {
	_, err := b.run(ctx, id, queue.ActionDelete, func(ctx context.Context) (api.MutationResult, error) {
		if err := b.backend.Delete(ctx, id); err != nil {
			return api.MutationResult{}, err
		}
		b.mu.Lock()
		b.deleted[id] = struct{}{}
		b.mu.Unlock()
		return api.MutationResult{}, nil
	})
	return err
}

// acquire checks the action against the cached status and marks id busy.
func (b *Board) acquire(id queue.ID, action queue.Action) (queue.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.partition.Find(id)
	if !ok {
		return queue.Item{}, fmt.Errorf("item %s: %w", id, ErrUnknownItem)
	}
	if !queue.Allows(action, item.Status) {
		return queue.Item{}, fmt.Errorf("cannot %s item %s while %s: %w", action, id, item.Status, ErrActionUnavailable)
	}
	if running, busy := b.inflight[id]; busy {
		return queue.Item{}, fmt.Errorf("item %s (%s running): %w", id, running, ErrBusy)
	}
	b.inflight[id] = action
	return item, nil
}

func (b *Board) release(id queue.ID) {
	b.mu.Lock()
	delete(b.inflight, id)
	b.mu.Unlock()
}

// run executes one command: local checks, the backend call, then a full
// refresh on success.
func (b *Board) run(ctx context.Context, id queue.ID, action queue.Action, call func(context.Context) (api.MutationResult, error)) (api.MutationResult, error) {
	item, err := b.acquire(id, action)
	if err != nil {
		return api.MutationResult{}, err
	}
	ctx = logging.WithItemID(ctx, id.String())
	logger := logging.WithContext(ctx, b.logger).With(
		logging.String(logging.FieldAction, string(action)),
		logging.String("from", string(item.Status)),
	)

	result, err := call(ctx)
	b.release(id)
	if err != nil {
		logger.Warn("moderation command failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "moderation_command_failed"),
			logging.String(logging.FieldErrorHint, "nothing changed locally; retry the command"),
		)
		return api.MutationResult{}, err
	}
	logger.Info("moderation command succeeded")

	if _, err := b.Refresh(ctx); err != nil {
		return result, fmt.Errorf("%s item %s succeeded: %w: %w", action, id, ErrStale, err)
	}
	return result, nil
}
