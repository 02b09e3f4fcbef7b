/*
Package store provides the storage collaborator boundary.

PURPOSE:
  The engine persists everything as text blobs keyed by hierarchical
  path (the same shape the hosted object store used in production
  exposes). This package defines that boundary (BlobStore), ships
  in-memory and filesystem implementations, and layers the typed
  Catalog on top for the JSON documents the engine actually reads and
  writes.

KEY PATHS:
  sites/{site}.json                          site roster (users, site events)
  sites/{site}/periods/{year}.json           period set for a year
  sites/{site}/events/{userId}.json          a user's events
  sites/{site}/settings/{userId}.json        availability rules/exceptions
  sites/{site}/desiderata/{userId}/{periodId}.json  usage cache

NOT-FOUND CONVENTION:
  Get returns ErrBlobNotFound for missing keys. The Catalog translates
  that into "empty collection" for list-like documents (events,
  settings, periods) and into explicit not-found errors for documents
  whose absence is meaningful (the site file). Any other storage error
  propagates unchanged; I/O failure is never swallowed into a default.

IMPLEMENTATIONS:
  - Memory:     In-memory, for tests
  - FileSystem: JSON files under a root directory
  - store/sqlite: Production path-keyed blob table (WAL mode)

SEE ALSO:
  - catalog.go: Typed document accessors
  - batcher.go: Explicit write batching
*/
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrBlobNotFound is returned by Get for keys with no stored blob.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the abstract key/value text blob store. Keys are
// hierarchical slash-separated paths.
type BlobStore interface {
	// Get returns the blob at key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the blob at key, overwriting any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the blob at key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}
