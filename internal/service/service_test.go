package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/store"
	"github.com/openmusic/openmusic-server/internal/store/sqlite"
)

// testEnv wires services over a temporary SQLite database and an in-memory cache.
type testEnv struct {
	store  store.Store
	cache  *cache.Memory
	logger *slog.Logger

	albums        *AlbumService
	songs         *SongService
	users         *UserService
	playlists     *PlaylistService
	collaborators *CollaborationService
	likes         *LikeService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c, err := cache.NewMemory(1000)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return newTestEnv(s, c)
}

// newTestEnv builds the services over s, which may wrap the real store.
func newTestEnv(s store.Store, c *cache.Memory) *testEnv {
	logger := slog.New(slog.DiscardHandler)
	resolver := access.NewResolver(s, logger)

	return &testEnv{
		store:         s,
		cache:         c,
		logger:        logger,
		albums:        NewAlbumService(s, c, nil, logger),
		songs:         NewSongService(s, logger),
		users:         NewUserService(s, logger),
		playlists:     NewPlaylistService(s, resolver, nil, logger),
		collaborators: NewCollaborationService(s, resolver, logger),
		likes:         NewLikeService(s, c, 30*time.Minute, nil, logger),
	}
}

func (e *testEnv) user(t *testing.T, username string) string {
	t.Helper()
	id, err := e.users.Register(context.Background(), UserPayload{
		Username: username,
		Password: "secret-password",
		Fullname: username + " tester",
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) album(t *testing.T, name string) string {
	t.Helper()
	id, err := e.albums.Create(context.Background(), AlbumPayload{Name: name, Year: 2008})
	require.NoError(t, err)
	return id
}

func (e *testEnv) song(t *testing.T, title, albumID string) string {
	t.Helper()
	id, err := e.songs.Create(context.Background(), SongPayload{
		Title:     title,
		Year:      2008,
		Genre:     "Indie",
		Performer: "The Testers",
		AlbumID:   albumID,
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) playlist(t *testing.T, ownerID, name string) string {
	t.Helper()
	id, err := e.playlists.Create(context.Background(), ownerID, PlaylistPayload{Name: name})
	require.NoError(t, err)
	return id
}
