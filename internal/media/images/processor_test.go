package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessor_StoresImage(t *testing.T) {
	ctx := context.Background()
	s := setupLocalStorage(t)
	p := NewProcessor(s, nil)
	p.now = func() time.Time { return time.UnixMilli(1700000000000) }

	cover, err := p.Process(ctx, "album-1", testPNG(t, 120, 80))
	require.NoError(t, err)

	assert.Equal(t, "album-1-1700000000000.png", cover.Key)
	assert.Equal(t, "image/png", cover.ContentType)
	assert.NotEmpty(t, cover.BlurHash)
	assert.True(t, strings.HasSuffix(cover.URL, "/album-1-1700000000000.png"))

	rc, err := s.Open(ctx, cover.Key)
	require.NoError(t, err)
	rc.Close()
}

func TestProcessor_Rejects(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(setupLocalStorage(t), nil)

	_, err := p.Process(ctx, "album-1", nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = p.Process(ctx, "album-1", []byte("just some text, not an image"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	big := make([]byte, MaxCoverBytes+1)
	copy(big, testPNG(t, 4, 4))
	_, err = p.Process(ctx, "album-1", big)
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainerrors.CodePayloadTooLarge, de.Code)
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testPNG(t, 200, 300))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = ComputeBlurHash([]byte("nope"))
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, thumbnail(small).(*image.RGBA))

	wide := image.NewRGBA(image.Rect(0, 0, 640, 160))
	b := thumbnail(wide).Bounds()
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 16, b.Dy())
}
