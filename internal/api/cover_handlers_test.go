package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmusic/openmusic-server/internal/media/images"
)

func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 12))
	for x := range 12 {
		for y := range 12 {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: 90, B: uint8(y * 20), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartBody builds a form with data in field and returns the body and its content type.
func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (ts *testServer) uploadCover(t *testing.T, albumID, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, data)
	return ts.api.Post(APIPrefix+"/albums/"+albumID+"/covers", "Content-Type: "+contentType, body)
}

func TestUploadCover(t *testing.T) {
	ts := setupTestServer(t, Options{})
	albumID := ts.createAlbum(t, "A Rush of Blood")
	data := coverPNG(t)

	resp := ts.uploadCover(t, albumID, "cover", data)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	env := decode[CoverData](t, resp)
	assert.Equal(t, "success", env.Status)
	assert.True(t, strings.HasPrefix(env.Data.CoverURL, testPublicURL+APIPrefix+"/albums/covers/"), env.Data.CoverURL)
	assert.NotEmpty(t, env.Data.BlurHash)

	resp = ts.api.Get(APIPrefix + "/albums/" + albumID)
	album := decode[AlbumData](t, resp).Data.Album
	require.NotNil(t, album.CoverURL)
	assert.Equal(t, env.Data.CoverURL, *album.CoverURL)
	assert.Equal(t, env.Data.BlurHash, album.CoverBlurHash)

	resp = ts.api.Get(strings.TrimPrefix(env.Data.CoverURL, testPublicURL))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneWeek, resp.Header().Get("Cache-Control"))
	assert.Equal(t, data, resp.Body.Bytes())
}

func TestUploadCover_Rejections(t *testing.T) {
	ts := setupTestServer(t, Options{})
	albumID := ts.createAlbum(t, "X&Y")

	tests := []struct {
		name   string
		album  string
		field  string
		data   []byte
		status int
	}{
		{"not an image", albumID, "cover", []byte("just some text, not pixels"), http.StatusBadRequest},
		{"wrong field", albumID, "image", coverPNG(t), http.StatusBadRequest},
		{"too large", albumID, "cover", append(coverPNG(t), make([]byte, images.MaxCoverBytes)...), http.StatusRequestEntityTooLarge},
		{"unknown album", "album-missing", "cover", coverPNG(t), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.uploadCover(t, tt.album, tt.field, tt.data)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
			assert.Equal(t, "fail", decode[any](t, resp).Status)
		})
	}
}

func TestUploadCover_RequiresMultipart(t *testing.T) {
	ts := setupTestServer(t, Options{})
	albumID := ts.createAlbum(t, "Mylo Xyloto")

	resp := ts.api.Post(APIPrefix+"/albums/"+albumID+"/covers", map[string]any{"cover": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServeCover_NotFound(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get(APIPrefix + "/albums/covers/missing.png")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Cover is not found", decode[any](t, resp).Message)

	resp = ts.api.Get(APIPrefix + "/albums/covers/.hidden")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
