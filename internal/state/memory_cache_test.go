package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_DumpAndLoad(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	ts := &TaskState{
		TaskID: 1,
		Status: StatusStarted,
		Files:  []string{"result-0.png"},
		Round:  2,
	}
	require.NoError(t, cache.Dump(ctx, ts))

	got, err := cache.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ts.TaskID, got.TaskID)
	assert.Equal(t, ts.Status, got.Status)
	assert.Equal(t, ts.Files, got.Files)
	assert.Equal(t, ts.Round, got.Round)
	assert.False(t, got.UpdatedAt.IsZero(), "Dump should stamp UpdatedAt")
}

func TestMemoryCache_LoadMissing(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()

	_, err := cache.Load(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryCache_Has(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	ok, err := cache.Has(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Dump(ctx, &TaskState{TaskID: 1, Status: StatusPending}))

	ok, err = cache.Has(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Dump(ctx, &TaskState{TaskID: 1, Status: StatusPending}))
	require.NoError(t, cache.Delete(ctx, 1))

	_, err := cache.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// Deleting absent state is not an error.
	assert.NoError(t, cache.Delete(ctx, 1))
}

func TestMemoryCache_CopiesState(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	ts := &TaskState{TaskID: 1, Status: StatusResultReady, Files: []string{"a.png"}}
	require.NoError(t, cache.Dump(ctx, ts))

	// Mutating the caller's copy must not affect the stored state.
	ts.Files[0] = "mutated.png"
	ts.Status = StatusAborted

	got, err := cache.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusResultReady, got.Status)
	assert.Equal(t, []string{"a.png"}, got.Files)

	// And mutating a loaded copy must not affect later loads.
	got.Files[0] = "mutated.png"
	again, err := cache.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, again.Files)
}
