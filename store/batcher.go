package store

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// BATCHER - Explicit write batching
// =============================================================================

// Batcher coalesces repeated writes to the same key behind a flush
// interval. The original system did this with an incidental debounce
// timer; here the policy is an explicit contract:
//
//   - Put queues the blob and returns immediately; the last write to
//     a key before a flush wins.
//   - Get reads through the pending queue first, so a caller always
//     sees its own queued writes. This holds during a flush too: an
//     entry stays visible to Get until its backend write has
//     succeeded.
//   - Pending writes are flushed every FlushInterval, on Flush(), and
//     on Close(). Close drains completely before returning.
//   - The data-loss window on crash is at most one flush interval.
//     Callers that cannot afford that write to the BlobStore directly.
//
// Flush errors are reported to OnError (if set) and the failed writes
// stay queued for the next flush.
type Batcher struct {
	backend       BlobStore
	FlushInterval time.Duration
	OnError       func(key string, err error)

	mu          sync.Mutex
	pending     map[string][]byte
	deleted     map[string]bool
	inflight    map[string][]byte
	inflightDel map[string]bool

	flushMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewBatcher starts a batcher over backend flushing every interval.
func NewBatcher(backend BlobStore, interval time.Duration) *Batcher {
	b := &Batcher{
		backend:       backend,
		FlushInterval: interval,
		pending:       make(map[string][]byte),
		deleted:       make(map[string]bool),
		inflight:      make(map[string][]byte),
		inflightDel:   make(map[string]bool),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Batcher) run() {
	defer close(b.done)
	ticker := time.NewTicker(b.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Flush(context.Background())
		case <-b.stop:
			b.Flush(context.Background())
			return
		}
	}
}

func (b *Batcher) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	if data, ok := b.pending[key]; ok {
		out := make([]byte, len(data))
		copy(out, data)
		b.mu.Unlock()
		return out, nil
	}
	if b.deleted[key] {
		b.mu.Unlock()
		return nil, ErrBlobNotFound
	}
	if data, ok := b.inflight[key]; ok {
		out := make([]byte, len(data))
		copy(out, data)
		b.mu.Unlock()
		return out, nil
	}
	if b.inflightDel[key] {
		b.mu.Unlock()
		return nil, ErrBlobNotFound
	}
	b.mu.Unlock()
	return b.backend.Get(ctx, key)
}

func (b *Batcher) Put(_ context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[key] = stored
	delete(b.deleted, key)
	return nil
}

func (b *Batcher) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, key)
	b.deleted[key] = true
	return nil
}

// Flush writes all queued changes through to the backend. Entries
// move to an in-flight set that Get still consults, and each entry
// leaves it only once its backend write has succeeded, so a
// concurrent Get never falls through to a stale backend value. Failed
// writes are requeued (unless overwritten in the meantime) and
// reported via OnError.
func (b *Batcher) Flush(ctx context.Context) {
	// One flush at a time; the in-flight set belongs to it.
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	b.inflight = b.pending
	b.inflightDel = b.deleted
	b.pending = make(map[string][]byte)
	b.deleted = make(map[string]bool)
	putKeys := make([]string, 0, len(b.inflight))
	for key := range b.inflight {
		putKeys = append(putKeys, key)
	}
	delKeys := make([]string, 0, len(b.inflightDel))
	for key := range b.inflightDel {
		delKeys = append(delKeys, key)
	}
	b.mu.Unlock()

	for _, key := range putKeys {
		b.mu.Lock()
		data := b.inflight[key]
		b.mu.Unlock()

		err := b.backend.Put(ctx, key, data)

		b.mu.Lock()
		delete(b.inflight, key)
		if err != nil {
			if _, overwritten := b.pending[key]; !overwritten && !b.deleted[key] {
				b.pending[key] = data
			}
		}
		b.mu.Unlock()
		if err != nil && b.OnError != nil {
			b.OnError(key, err)
		}
	}
	for _, key := range delKeys {
		err := b.backend.Delete(ctx, key)

		b.mu.Lock()
		delete(b.inflightDel, key)
		if err != nil {
			if _, overwritten := b.pending[key]; !overwritten {
				b.deleted[key] = true
			}
		}
		b.mu.Unlock()
		if err != nil && b.OnError != nil {
			b.OnError(key, err)
		}
	}
}

// Close stops the flush loop after a final drain.
func (b *Batcher) Close() {
	b.once.Do(func() { close(b.stop) })
	<-b.done
}
