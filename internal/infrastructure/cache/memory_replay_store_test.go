package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReplayStoreMarkOnce(t *testing.T) {
	store := NewMemoryReplayStore()
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "webhook:lydia:ref-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.MarkProcessed(ctx, "webhook:lydia:ref-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, second)

	processed, err := store.IsProcessed(ctx, "webhook:lydia:ref-1")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "webhook:lydia:other")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestMemoryReplayStoreExpiry(t *testing.T) {
	store := NewMemoryReplayStore()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "k", -time.Second)
	require.NoError(t, err)

	processed, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)

	// An expired entry can be re-marked.
	again, err := store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}
