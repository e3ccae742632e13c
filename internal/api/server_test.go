package api

import (
	"context"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/auth"
	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/kv"
	"github.com/openmusic/openmusic-server/internal/media/images"
	"github.com/openmusic/openmusic-server/internal/queue"
	"github.com/openmusic/openmusic-server/internal/service"
	"github.com/openmusic/openmusic-server/internal/store/sqlite"
)

const (
	testTokenKey    = "505152535455565758595a5b5c5d5e5f606162636465666768696a6b6c6d6e6f"
	testExportQueue = "export:playlist"
	testPublicURL   = "http://localhost:5000"
)

// testServer wraps the API server with the pieces tests inspect directly.
type testServer struct {
	*Server
	api   humatest.TestAPI
	queue *queue.Queue
}

// testEnvelope mirrors the response envelope with typed data.
type testEnvelope[T any] struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := cache.NewMemory(1000)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	db, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	q := queue.New(db)

	tokens, err := auth.NewTokenService(testTokenKey, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	storage, err := images.NewLocalStorage(filepath.Join(dir, "covers"), testPublicURL+APIPrefix+"/albums/covers")
	require.NoError(t, err)

	resolver := access.NewResolver(st, logger)
	covers := service.NewCoverService(st, images.NewProcessor(storage, logger), logger)

	services := &Services{
		Album:         service.NewAlbumService(st, c, covers, logger),
		Cover:         covers,
		Like:          service.NewLikeService(st, c, 30*time.Minute, nil, logger),
		Song:          service.NewSongService(st, logger),
		User:          service.NewUserService(st, logger),
		Auth:          service.NewAuthenticationService(st, tokens, logger),
		Playlist:      service.NewPlaylistService(st, resolver, nil, logger),
		Collaboration: service.NewCollaborationService(st, resolver, logger),
		Export:        service.NewExportService(resolver, q, testExportQueue, nil, logger),
	}

	s := NewServer(st, services, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		queue:  q,
	}
}

// login registers username and returns its user ID and a bearer header.
func (ts *testServer) login(t *testing.T, username string) (userID, authHeader string) {
	t.Helper()

	resp := ts.api.Post(APIPrefix+"/users", map[string]any{
		"username": username,
		"password": "secret-password",
		"fullname": username + " tester",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	userID = decode[UserIDData](t, resp).Data.UserID

	resp = ts.api.Post(APIPrefix+"/authentications", map[string]any{
		"username": username,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	tokens := decode[service.Tokens](t, resp).Data

	return userID, "Authorization: Bearer " + tokens.AccessToken
}

func (ts *testServer) createAlbum(t *testing.T, name string) string {
	t.Helper()
	resp := ts.api.Post(APIPrefix+"/albums", map[string]any{"name": name, "year": 2008})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[AlbumIDData](t, resp).Data.AlbumID
}

func (ts *testServer) createSong(t *testing.T, title, albumID string) string {
	t.Helper()
	body := map[string]any{
		"title":     title,
		"year":      2008,
		"genre":     "Indie",
		"performer": "The Testers",
		"duration":  215,
	}
	if albumID != "" {
		body["albumId"] = albumID
	}
	resp := ts.api.Post(APIPrefix+"/songs", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[SongIDData](t, resp).Data.SongID
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, Options{Checks: map[string]HealthCheck{
		"cache": func(context.Context) error { return nil },
		"queue": func(context.Context) error { return errors.New("badger closed") },
	}})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["cache"].Status)
	assert.Equal(t, "unhealthy", env.Data.Components["queue"].Status)
	assert.Equal(t, "badger closed", env.Data.Components["queue"].Message)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get(APIPrefix + "/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name string
		resp *httptest.ResponseRecorder
	}{
		{"list playlists", ts.api.Get(APIPrefix + "/playlists")},
		{"create playlist", ts.api.Post(APIPrefix+"/playlists", map[string]any{"name": "x"})},
		{"like album", ts.api.Post(APIPrefix + "/albums/album-x/likes")},
		{"garbage token", ts.api.Get(APIPrefix+"/playlists", "Authorization: Bearer not-a-token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, tt.resp.Code)
			env := decode[any](t, tt.resp)
			assert.Equal(t, "fail", env.Status)
			assert.Equal(t, "UNAUTHORIZED", env.Code)
		})
	}
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, Options{AuthRatePerMinute: 1, AuthBurst: 1})

	creds := map[string]any{"username": "nobody", "password": "whatever"}

	first := ts.api.Post(APIPrefix+"/authentications", creds)
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := ts.api.Post(APIPrefix+"/authentications", creds)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	env := decode[any](t, second)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
}

func TestMetricsHandlerMounted(t *testing.T) {
	ts := setupTestServer(t, Options{MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("openmusic_up 1\n"))
	})})

	resp := ts.api.Get("/metrics")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "openmusic_up")
}
