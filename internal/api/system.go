package api

import (
	"context"
	"fmt"
	"net/http"
)

// SystemStatus fetches per-dependency health.
func (c *Client) SystemStatus(ctx context.Context) (SystemStatus, error) {
	var status SystemStatus
	if err := c.getJSON(ctx, "system status", &status, "status"); err != nil {
		return SystemStatus{}, err
	}
	return status, nil
}

// Analytics fetches aggregate quality and volume metrics.
func (c *Client) Analytics(ctx context.Context) (Analytics, error) {
	var analytics Analytics
	if err := c.getJSON(ctx, "analytics", &analytics, "analytics"); err != nil {
		return Analytics{}, err
	}
	return analytics, nil
}

// Activity fetches recent backend activity in the order the backend sent it.
func (c *Client) Activity(ctx context.Context) ([]ActivityEntry, error) {
	const op = "activity"
	raw, err := c.do(ctx, request{op: op, method: http.MethodGet, segments: []string{"activity"}})
	if err != nil {
		return nil, err
	}
	entries, err := decodeList[ActivityEntry](op, raw, "activity", "items")
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Time = parseActivityTime(entries[i].Timestamp)
	}
	return entries, nil
}

// Settings fetches the backend settings document.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	settings := Settings{}
	if err := c.getJSON(ctx, "get settings", &settings, "settings"); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings replaces settings keys with the supplied values and returns
// the backend's resulting document.
func (c *Client) UpdateSettings(ctx context.Context, changes Settings) (Settings, error) {
	const op = "update settings"
	body, err := jsonBody(changes)
	if err != nil {
		return nil, fmt.Errorf("update settings: encode: %w", err)
	}
	raw, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPut,
		segments:    []string{"settings"},
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	updated := Settings{}
	if len(raw) == 0 {
		return updated, nil
	}
	if err := decode(op, raw, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}
