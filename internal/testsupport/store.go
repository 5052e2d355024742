package testsupport

import (
	"context"
	"testing"

	"shorts/internal/config"
	"shorts/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a processing job for url using the provided store.
func NewJob(t testing.TB, store *queue.Store, url string, start, duration int) *queue.Job {
	t.Helper()

	job, err := store.Create(context.Background(), queue.NewJob{
		SourceURL: url,
		StartTime: start,
		Duration:  duration,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
