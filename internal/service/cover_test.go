package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/media/images"
)

func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := range 16 {
		for y := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func setupCoverTest(t *testing.T) (*testEnv, *CoverService) {
	t.Helper()
	env := setupTest(t)
	storage, err := images.NewLocalStorage(t.TempDir(), "http://localhost:5000/api/v1/albums/covers")
	require.NoError(t, err)
	covers := NewCoverService(env.store, images.NewProcessor(storage, env.logger), env.logger)
	env.albums = NewAlbumService(env.store, env.cache, covers, env.logger)
	return env, covers
}

func TestCoverService_UploadReplacesPrevious(t *testing.T) {
	env, covers := setupCoverTest(t)
	ctx := context.Background()
	albumID := env.album(t, "Everyday Life")
	data := coverPNG(t)

	first, err := covers.Upload(ctx, albumID, data)
	require.NoError(t, err)
	assert.Equal(t, "image/png", first.ContentType)
	assert.NotEmpty(t, first.BlurHash)
	assert.Equal(t, "http://localhost:5000/api/v1/albums/covers/"+first.Key, covers.URL(first.Key))

	album, err := env.albums.Get(ctx, albumID)
	require.NoError(t, err)
	assert.Equal(t, first.Key, album.Cover)
	assert.Equal(t, first.BlurHash, album.CoverBlurHash)

	rc, err := covers.Open(ctx, first.Key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	// Keys carry a millisecond timestamp.
	time.Sleep(2 * time.Millisecond)
	second, err := covers.Upload(ctx, albumID, data)
	require.NoError(t, err)
	require.NotEqual(t, first.Key, second.Key)

	_, err = covers.Open(ctx, first.Key)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCoverService_Rejects(t *testing.T) {
	env, covers := setupCoverTest(t)
	ctx := context.Background()

	_, err := covers.Upload(ctx, "album-missing", coverPNG(t))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	albumID := env.album(t, "Music of the Spheres")
	_, err = covers.Upload(ctx, albumID, []byte("plain text, not an image"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = covers.Upload(ctx, albumID, make([]byte, images.MaxCoverBytes+1))
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainerrors.CodePayloadTooLarge, de.Code)
}

func TestCoverService_DeleteAlbumRemovesCover(t *testing.T) {
	env, covers := setupCoverTest(t)
	ctx := context.Background()
	albumID := env.album(t, "Moon Music")

	cover, err := covers.Upload(ctx, albumID, coverPNG(t))
	require.NoError(t, err)

	require.NoError(t, env.albums.Delete(ctx, albumID))
	_, err = covers.Open(ctx, cover.Key)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
