package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/store"
)

// =============================================================================
// BATCHER TESTS - The flush policy is a contract, not a side effect
// =============================================================================

func TestBatcher_ReadYourOwnWrites(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	b := store.NewBatcher(backend, time.Hour) // interval long enough to never fire
	defer b.Close()

	require.NoError(t, b.Put(ctx, "k", []byte("v1")))

	// The queued write is visible through the batcher before any flush
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// But not yet in the backend
	_, err = backend.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)
}

func TestBatcher_FlushWritesThrough(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	b := store.NewBatcher(backend, time.Hour)
	defer b.Close()

	require.NoError(t, b.Put(ctx, "k", []byte("v1")))
	require.NoError(t, b.Put(ctx, "k", []byte("v2"))) // last write wins
	b.Flush(ctx)

	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestBatcher_CloseDrains(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	b := store.NewBatcher(backend, time.Hour)

	require.NoError(t, b.Put(ctx, "k", []byte("v")))
	b.Close()

	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestBatcher_DeleteShadowsBackend(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	require.NoError(t, backend.Put(ctx, "k", []byte("v")))

	b := store.NewBatcher(backend, time.Hour)
	defer b.Close()

	require.NoError(t, b.Delete(ctx, "k"))

	// The pending delete is visible before the flush
	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)

	b.Flush(ctx)
	_, err = backend.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrBlobNotFound)
}

// failingStore fails every Put until healed.
type failingStore struct {
	*store.Memory
	healed bool
}

func (f *failingStore) Put(ctx context.Context, key string, data []byte) error {
	if !f.healed {
		return errors.New("backend unavailable")
	}
	return f.Memory.Put(ctx, key, data)
}

func TestBatcher_FailedWritesStayQueued(t *testing.T) {
	ctx := context.Background()
	backend := &failingStore{Memory: store.NewMemory()}
	b := store.NewBatcher(backend, time.Hour)
	defer b.Close()

	var reported []string
	b.OnError = func(key string, _ error) { reported = append(reported, key) }

	require.NoError(t, b.Put(ctx, "k", []byte("v")))
	b.Flush(ctx)

	// GIVEN: The first flush failed and was reported
	assert.Equal(t, []string{"k"}, reported)

	// WHEN: The backend heals and the next flush runs
	backend.healed = true
	b.Flush(ctx)

	// THEN: The queued write finally lands
	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

// gatedStore blocks its first Put until released, holding a flush
// mid-write so tests can observe the batcher during it.
type gatedStore struct {
	*store.Memory
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Put(ctx context.Context, key string, data []byte) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Memory.Put(ctx, key, data)
}

func TestBatcher_GetSeesQueuedWriteDuringFlush(t *testing.T) {
	ctx := context.Background()
	backend := &gatedStore{
		Memory:  store.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, backend.Memory.Put(ctx, "k", []byte("old")))

	b := store.NewBatcher(backend, time.Hour)
	require.NoError(t, b.Put(ctx, "k", []byte("new")))

	// GIVEN: A flush stalled inside the backend write for "k"
	flushed := make(chan struct{})
	go func() {
		b.Flush(ctx)
		close(flushed)
	}()
	<-backend.entered

	// WHEN: A reader asks for the key mid-flush
	got, err := b.Get(ctx, "k")

	// THEN: It sees its own queued write, never the stale backend value
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)

	close(backend.release)
	<-flushed
	b.Close()

	got, err = backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestBatcher_IntervalFlush(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	b := store.NewBatcher(backend, 10*time.Millisecond)
	defer b.Close()

	require.NoError(t, b.Put(ctx, "k", []byte("v")))

	require.Eventually(t, func() bool {
		_, err := backend.Get(ctx, "k")
		return err == nil
	}, time.Second, 5*time.Millisecond, "interval flush should write through")
}
