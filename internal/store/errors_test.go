package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmusic/openmusic-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := store.ErrInvalidInput.WithCause(cause)

	assert.Contains(t, err.Error(), "invalid input")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrNotFound.HTTPCode())
	assert.Equal(t, http.StatusConflict, store.ErrAlreadyExists.HTTPCode())
}

func TestError_WithMessageStillMatchesSentinel(t *testing.T) {
	err := store.ErrNotFound.WithMessage("album album-x not found")

	assert.Equal(t, "album album-x not found", err.Error())
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, store.ErrAlreadyExists))

	wrapped := fmt.Errorf("get album: %w", err)
	assert.True(t, errors.Is(wrapped, store.ErrNotFound))
}
