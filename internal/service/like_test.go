package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmusic/openmusic-server/internal/cache"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
)

// recordingCache counts deletes on top of a real cache.
type recordingCache struct {
	cache.Cache
	mu      sync.Mutex
	deleted []string
}

func (r *recordingCache) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, key)
	r.mu.Unlock()
	return r.Cache.Delete(ctx, key)
}

func TestLikeService_ToggleInvalidatesCache(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	rec := &recordingCache{Cache: env.cache}
	likes := NewLikeService(env.store, rec, time.Minute, nil, env.logger)

	userID := env.user(t, "fan")
	albumID := env.album(t, "Parachutes")

	liked, err := likes.Toggle(ctx, userID, albumID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = likes.Toggle(ctx, userID, albumID)
	require.NoError(t, err)
	assert.False(t, liked)

	assert.Equal(t, []string{"albumlike:" + albumID, "albumlike:" + albumID}, rec.deleted)

	n, err := env.store.CountAlbumLikes(ctx, albumID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikeService_ToggleSequenceDropsCachedCount(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	userID := env.user(t, "fan")
	albumID := env.album(t, "Viva la Vida")
	key := "albumlike:" + albumID

	steps := []struct {
		countBefore int
		wantLiked   bool
	}{
		{countBefore: 0, wantLiked: true},
		{countBefore: 1, wantLiked: false},
		{countBefore: 0, wantLiked: true},
	}

	for i, step := range steps {
		got, err := env.likes.Count(ctx, albumID)
		require.NoError(t, err, "step %d", i)
		require.Equal(t, step.countBefore, got.Count, "step %d", i)
		_, err = env.cache.Get(ctx, key)
		require.NoError(t, err, "step %d: count should be cached before toggling", i)

		liked, err := env.likes.Toggle(ctx, userID, albumID)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.wantLiked, liked, "step %d", i)

		_, err = env.cache.Get(ctx, key)
		require.ErrorIs(t, err, cache.ErrMiss, "step %d: toggle must drop the cached count", i)
	}

	got, err := env.likes.Count(ctx, albumID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.False(t, got.FromCache)
}

func TestLikeService_ToggleUnknownAlbum(t *testing.T) {
	env := setupTest(t)
	userID := env.user(t, "fan")

	_, err := env.likes.Toggle(context.Background(), userID, "album-missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "Album is not found")
}

func TestLikeService_CountIsCachedUntilToggle(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	albumID := env.album(t, "A Rush of Blood to the Head")

	for _, name := range []string{"ana", "budi", "citra"} {
		liked, err := env.likes.Toggle(ctx, env.user(t, name), albumID)
		require.NoError(t, err)
		require.True(t, liked)
	}

	got, err := env.likes.Count(ctx, albumID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.False(t, got.FromCache)

	got, err = env.likes.Count(ctx, albumID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.True(t, got.FromCache)

	// A fourth like drops the cached value.
	_, err = env.likes.Toggle(ctx, env.user(t, "dewi"), albumID)
	require.NoError(t, err)

	got, err = env.likes.Count(ctx, albumID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Count)
	assert.False(t, got.FromCache)
}

func TestLikeService_CountZeroAndMissing(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	got, err := env.likes.Count(ctx, env.album(t, "X&Y"))
	require.NoError(t, err)
	assert.Zero(t, got.Count)

	_, err = env.likes.Count(ctx, "album-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLikeService_CorruptCacheEntryIsMiss(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	albumID := env.album(t, "Ghost Stories")

	require.NoError(t, env.cache.Set(ctx, "albumlike:"+albumID, "not-a-number", time.Minute))

	got, err := env.likes.Count(ctx, albumID)
	require.NoError(t, err)
	assert.Zero(t, got.Count)
	assert.False(t, got.FromCache)
}

func TestAlbumService_DeleteDropsLikeCache(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	albumID := env.album(t, "Mylo Xyloto")

	_, err := env.likes.Count(ctx, albumID)
	require.NoError(t, err)
	_, err = env.cache.Get(ctx, "albumlike:"+albumID)
	require.NoError(t, err)

	require.NoError(t, env.albums.Delete(ctx, albumID))
	_, err = env.cache.Get(ctx, "albumlike:"+albumID)
	assert.ErrorIs(t, err, cache.ErrMiss)
}
