package api

import (
	"context"
	"fmt"
	"net/http"

	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
)

// ListQueue fetches the full queue snapshot.
func (c *Client) ListQueue(ctx context.Context) ([]queue.Item, error) {
	const op = "list queue"
	raw, err := c.do(ctx, request{op: op, method: http.MethodGet, segments: []string{"queue"}})
	if err != nil {
		return nil, err
	}
	items, err := decodeList[queue.Item](op, raw, "queue", "items")
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []queue.Item{}
	}
	return items, nil
}

// GetItem fetches one submission.
func (c *Client) GetItem(ctx context.Context, id queue.ID) (queue.Item, error) {
	const op = "get item"
	var item queue.Item
	if err := c.getJSON(logging.WithItemID(ctx, id.String()), op, &item, "queue", id.String()); err != nil {
		return queue.Item{}, err
	}
	return item, nil
}

// UpdateItem applies a partial update to a submission.
func (c *Client) UpdateItem(ctx context.Context, id queue.ID, update ItemUpdate) (MutationResult, error) {
	const op = "update item"
	body, err := jsonBody(update)
	if err != nil {
		return MutationResult{}, fmt.Errorf("update item: encode: %w", err)
	}
	raw, err := c.do(logging.WithItemID(ctx, id.String()), request{
		op:          op,
		method:      http.MethodPut,
		segments:    []string{"queue", id.String()},
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return MutationResult{}, err
	}
	return decodeMutation(op, raw)
}

// Approve moves a pending submission to approved.
func (c *Client) Approve(ctx context.Context, id queue.ID) (MutationResult, error) {
	return c.action(ctx, "approve", id)
}

// Reject moves a pending submission to rejected.
func (c *Client) Reject(ctx context.Context, id queue.ID) (MutationResult, error) {
	return c.action(ctx, "reject", id)
}

// PostNow publishes a pending or approved submission immediately.
func (c *Client) PostNow(ctx context.Context, id queue.ID) (MutationResult, error) {
	return c.action(ctx, "post", id)
}

// Delete removes a submission.
func (c *Client) Delete(ctx context.Context, id queue.ID) error {
	_, err := c.do(logging.WithItemID(ctx, id.String()), request{
		op:       "delete item",
		method:   http.MethodDelete,
		segments: []string{"queue", id.String()},
	})
	return err
}

func (c *Client) action(ctx context.Context, verb string, id queue.ID) (MutationResult, error) {
	op := verb + " item"
	raw, err := c.do(logging.WithItemID(ctx, id.String()), request{
		op:       op,
		method:   http.MethodPost,
		segments: []string{"queue", id.String(), verb},
	})
	if err != nil {
		return MutationResult{}, err
	}
	return decodeMutation(op, raw)
}
