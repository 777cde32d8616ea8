package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"captiondesk/internal/storage"
)

type remembered struct {
	Tone  string `json:"tone"`
	Count int    `json:"count"`
}

func openStores(t *testing.T) map[string]storage.Store {
	t.Helper()
	sqliteStore, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]storage.Store{
		"memory": storage.NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			var got remembered
			ok, err := store.Get(ctx, "prefs", &got)
			if err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := store.Set(ctx, "prefs", remembered{Tone: "clinical", Count: 2}); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Set(ctx, "prefs", remembered{Tone: "teasing", Count: 3}); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			ok, err = store.Get(ctx, "prefs", &got)
			if err != nil || !ok {
				t.Fatalf("Get: ok=%v err=%v", ok, err)
			}
			if got.Tone != "teasing" || got.Count != 3 {
				t.Fatalf("unexpected value %+v", got)
			}

			if err := store.Remove(ctx, "prefs"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if ok, _ := store.Get(ctx, "prefs", &got); ok {
				t.Fatal("expected key removed")
			}
			if err := store.Remove(ctx, "prefs"); err != nil {
				t.Fatalf("Remove missing key should succeed: %v", err)
			}
		})
	}
}

func TestStoreRejectsBlankKey(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "  ", "x"); !errors.Is(err, storage.ErrInvalidKey) {
				t.Fatalf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	first, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Set(ctx, storage.KeyLastTone, "cruel"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	var tone string
	if ok, err := second.Get(ctx, storage.KeyLastTone, &tone); err != nil || !ok || tone != "cruel" {
		t.Fatalf("expected persisted tone, got %q ok=%v err=%v", tone, ok, err)
	}
}

func TestSQLiteStoreConcurrentOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store, err := storage.OpenSQLite(ctx, path)
			if err != nil {
				errs <- err
				return
			}
			errs <- store.Close()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent open failed: %v", err)
		}
	}
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	creds := storage.NewCredentials(storage.NewMemoryStore())

	token, err := creds.Token(ctx)
	if err != nil || token != "" {
		t.Fatalf("expected anonymous state, got %q err=%v", token, err)
	}

	if err := creds.Seed(ctx, "seeded"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := creds.Seed(ctx, "ignored"); err != nil {
		t.Fatalf("Seed second: %v", err)
	}
	if token, _ := creds.Token(ctx); token != "seeded" {
		t.Fatalf("expected seed to keep first token, got %q", token)
	}

	if err := creds.SetToken(ctx, " replaced "); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if token, _ := creds.Token(ctx); token != "replaced" {
		t.Fatalf("expected trimmed token, got %q", token)
	}

	if err := creds.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if token, _ := creds.Token(ctx); token != "" {
		t.Fatalf("expected cleared token, got %q", token)
	}
}
