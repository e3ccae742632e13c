package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongLifecycle(t *testing.T) {
	ts := setupTestServer(t, Options{})
	songID := ts.createSong(t, "Yellow", "")

	resp := ts.api.Get(APIPrefix + "/songs/" + songID)
	require.Equal(t, http.StatusOK, resp.Code)
	song := decode[SongData](t, resp).Data.Song
	require.NotNil(t, song)
	assert.Equal(t, "Yellow", song.Title)
	require.NotNil(t, song.Duration)
	assert.Equal(t, 215, *song.Duration)
	assert.Empty(t, song.AlbumID)

	resp = ts.api.Put(APIPrefix+"/songs/"+songID, map[string]any{
		"title":     "Yellow (Live)",
		"year":      2003,
		"genre":     "Rock",
		"performer": "The Testers",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Song has been updated", decode[any](t, resp).Message)

	resp = ts.api.Get(APIPrefix + "/songs/" + songID)
	song = decode[SongData](t, resp).Data.Song
	assert.Equal(t, "Yellow (Live)", song.Title)
	assert.Nil(t, song.Duration)

	resp = ts.api.Delete(APIPrefix + "/songs/" + songID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Song has been deleted", decode[any](t, resp).Message)
	assert.Equal(t, http.StatusNotFound, ts.api.Get(APIPrefix+"/songs/"+songID).Code)
}

func TestListSongs_Filters(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createSong(t, "Clocks", "")
	ts.createSong(t, "Speed of Sound", "")

	resp := ts.api.Get(APIPrefix + "/songs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[SongsData](t, resp).Data.Songs, 2)

	resp = ts.api.Get(APIPrefix + "/songs?title=clo")
	songs := decode[SongsData](t, resp).Data.Songs
	require.Len(t, songs, 1)
	assert.Equal(t, "Clocks", songs[0].Title)

	resp = ts.api.Get(APIPrefix + "/songs?performer=nobody")
	songs = decode[SongsData](t, resp).Data.Songs
	assert.NotNil(t, songs)
	assert.Empty(t, songs)
}

func TestCreateSong_UnknownAlbum(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post(APIPrefix+"/songs", map[string]any{
		"title":     "Orphan",
		"year":      2001,
		"genre":     "Pop",
		"performer": "Nobody",
		"albumId":   "album-missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Album is not found", decode[any](t, resp).Message)
}

func TestCreateSong_InvalidPayload(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post(APIPrefix+"/songs", map[string]any{"title": "No year", "genre": "Pop", "performer": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post(APIPrefix+"/songs", map[string]any{
		"title": "Negative", "year": 2000, "genre": "Pop", "performer": "X", "duration": -3,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
