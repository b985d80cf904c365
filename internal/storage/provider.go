// Package storage defines the file-system abstraction under the note store.
package storage

import (
	"context"
	"time"
)

// Provider is the interface for store file operations.
// All paths are relative to the provider root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Lock takes an exclusive advisory lock associated with path, polling
	// every retry until ctx is done. The returned func releases it.
	Lock(ctx context.Context, path string, retry time.Duration) (func() error, error)
	// Abs resolves path to an absolute file-system path.
	Abs(path string) (string, error)
}
