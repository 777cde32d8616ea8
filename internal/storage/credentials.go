package storage

import (
	"context"
	"strings"
)

// Credentials reads and writes the bearer token through a Store.
type Credentials struct {
	store Store
}

// NewCredentials wraps store.
func NewCredentials(store Store) *Credentials {
	return &Credentials{store: store}
}

// Token returns the stored bearer token, or "" when none is held.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	if c == nil || c.store == nil {
		return "", nil
	}
	var token string
	ok, err := c.store.Get(ctx, KeyAuthToken, &token)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken stores token. A blank token clears the credential.
func (c *Credentials) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return c.Clear(ctx)
	}
	return c.store.Set(ctx, KeyAuthToken, token)
}

// Clear removes the stored token.
func (c *Credentials) Clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Remove(ctx, KeyAuthToken)
}

// Seed stores token only when no credential is held yet.
func (c *Credentials) Seed(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	current, err := c.Token(ctx)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}
	return c.SetToken(ctx, token)
}
