package moderation

import (
	"context"
	"errors"
	"fmt"

	"captiondesk/internal/api"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

// Edit is an in-progress caption edit. Transcription is shown for reference
// and is not changed by saving.
type Edit struct {
	ID              queue.ID
	OriginalCaption string
	Caption         string
	Transcription   string
}

// Length returns the caption length in characters.
func (e Edit) Length() int {
	return textutil.CaptionLength(e.Caption)
}

// OverLimit reports whether the caption exceeds the limit.
func (e Edit) OverLimit() bool {
	return textutil.CaptionOverLimit(e.Caption)
}

// Counter renders the caption counter.
func (e Edit) Counter() string {
	return textutil.CaptionCounter(e.Caption)
}

// BeginEdit opens an edit buffer seeded from the current record. Beginning
// again discards the previous buffer.
func (b *Board) BeginEdit(id queue.ID) (Edit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.partition.Find(id)
	if !ok {
		return Edit{}, fmt.Errorf("item %s: %w", id, ErrUnknownItem)
	}
	if !queue.Allows(queue.ActionEdit, item.Status) {
		return Edit{}, fmt.Errorf("cannot edit item %s while %s: %w", id, item.Status, ErrActionUnavailable)
	}
	edit := &Edit{
		ID:              id,
		OriginalCaption: item.Caption,
		Caption:         item.Caption,
		Transcription:   item.Transcription,
	}
	b.edits[id] = edit
	return *edit, nil
}

// SetEditCaption replaces the caption in the edit buffer.
func (b *Board) SetEditCaption(id queue.ID, caption string) (Edit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	edit, ok := b.edits[id]
	if !ok {
		return Edit{}, fmt.Errorf("item %s: %w", id, ErrNoEdit)
	}
	edit.Caption = caption
	return *edit, nil
}

// CurrentEdit returns the edit buffer for id.
func (b *Board) CurrentEdit(id queue.ID) (Edit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	edit, ok := b.edits[id]
	if !ok {
		return Edit{}, false
	}
	return *edit, true
}

// CancelEdit discards the edit buffer without contacting the backend.
func (b *Board) CancelEdit(id queue.ID) {
	b.mu.Lock()
	delete(b.edits, id)
	b.mu.Unlock()
}

// SaveEdit validates the buffered caption and sends it. Empty and
// over-limit captions are rejected before any backend call. On failure the
// buffer is kept.
func (b *Board) SaveEdit(ctx context.Context, id queue.ID) (api.MutationResult, error) {
	b.mu.Lock()
	edit, ok := b.edits[id]
	var caption string
	if ok {
		caption = edit.Caption
	}
	b.mu.Unlock()
	if !ok {
		return api.MutationResult{}, fmt.Errorf("item %s: %w", id, ErrNoEdit)
	}
	if err := textutil.ValidateCaption(caption); err != nil {
		return api.MutationResult{}, fmt.Errorf("item %s: %w", id, err)
	}

	result, err := b.run(ctx, id, queue.ActionEdit, func(ctx context.Context) (api.MutationResult, error) {
		return b.backend.UpdateItem(ctx, id, api.ItemUpdate{Caption: &caption})
	})
	if err != nil && !errors.Is(err, ErrStale) {
		return result, err
	}
	b.mu.Lock()
	if current, ok := b.edits[id]; ok && current == edit {
		delete(b.edits, id)
	}
	b.mu.Unlock()
	return result, err
}
