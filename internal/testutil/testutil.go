// Package testutil provides shared test helpers for setting up stores and services.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/quill/internal/notestore"
	"github.com/starford/quill/internal/noteservice"
)

// TestStore creates a note store backed by a file in a temporary directory.
// The file does not exist until the first append.
func TestStore(t *testing.T) (*notestore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	store, err := notestore.Open(path, notestore.Options{
		LockTimeout: 2 * time.Second,
		LockRetry:   time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	return store, path
}

// TestService wires a service to a fresh TestStore with a discarding logger.
func TestService(t *testing.T, opts ...noteservice.Option) (*noteservice.Service, string) {
	t.Helper()
	store, path := TestStore(t)
	opts = append([]noteservice.Option{noteservice.WithLogger(DiscardLogger())}, opts...)
	return noteservice.NewService(store, opts...), path
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Notifier records the ids it is told about.
type Notifier struct {
	mu  sync.Mutex
	ids []int
}

// PublishNoteAdded implements noteservice.Notifier.
func (n *Notifier) PublishNoteAdded(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
}

// IDs returns a copy of the recorded ids.
func (n *Notifier) IDs() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.ids...)
}
