package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/store"
)

func TestSQLiteBlobStore_RoundTrip(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	key := "sites/hospital-a/events/u1.json"

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, store.ErrBlobNotFound)

	require.NoError(t, s.Put(ctx, key, []byte(`[{"id":"e1"}]`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"e1"}]`), got)

	// Overwrite
	require.NoError(t, s.Put(ctx, key, []byte(`[]`)))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, store.ErrBlobNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, s.Delete(ctx, key))
}
