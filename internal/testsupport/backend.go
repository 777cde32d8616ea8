package testsupport

import (
	"context"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"captiondesk/internal/api"
	"captiondesk/internal/devbackend"
	"captiondesk/internal/logging"
	"captiondesk/internal/storage"
)

// Backend is a development backend served over httptest.
type Backend struct {
	Server *devbackend.Server
	HTTP   *httptest.Server
	URL    string
}

// BackendOption customizes StartBackend.
type BackendOption func(*devbackend.Options)

// WithBackendToken requires token on every API request.
func WithBackendToken(token string) BackendOption {
	return func(o *devbackend.Options) {
		o.Token = token
	}
}

// WithSeed loads the sample queue.
func WithSeed() BackendOption {
	return func(o *devbackend.Options) {
		o.Seed = true
	}
}

// WithClock fixes the backend clock.
func WithClock(now time.Time) BackendOption {
	return func(o *devbackend.Options) {
		o.Now = func() time.Time { return now }
	}
}

// StartBackend serves a fresh development backend with sequential ids
// ("1", "2", ...) and registers cleanup.
func StartBackend(t testing.TB, opts ...BackendOption) *Backend {
	t.Helper()
	var next atomic.Int64
	options := devbackend.Options{
		Logger: logging.NewNop(),
		NewID:  func() string { return strconv.FormatInt(next.Add(1), 10) },
	}
	for _, opt := range opts {
		opt(&options)
	}
	server := devbackend.New(options)
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return &Backend{Server: server, HTTP: httpServer, URL: httpServer.URL}
}

// NewClient returns an API client for b backed by an in-memory credential
// store holding token.
func (b *Backend) NewClient(t testing.TB, token string) (*api.Client, *storage.Credentials) {
	t.Helper()
	creds := storage.NewCredentials(storage.NewMemoryStore())
	if token != "" {
		if err := creds.SetToken(context.Background(), token); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}
	client, err := api.New(api.Config{BaseURL: b.URL, Tokens: creds, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	return client, creds
}
