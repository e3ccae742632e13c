package errors

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("Album is not found"), http.StatusNotFound},
		{AlreadyExists("username taken"), http.StatusConflict},
		{Unauthorized("expired"), http.StatusUnauthorized},
		{InvalidCredentials("wrong password"), http.StatusUnauthorized},
		{Forbidden("not owner"), http.StatusForbidden},
		{Validation("title is required"), http.StatusBadRequest},
		{Invariant("Failed to add song"), http.StatusBadRequest},
		{PayloadTooLarge("cover too big"), http.StatusRequestEntityTooLarge},
		{&Error{Code: CodeInternal, Message: "boom"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("Playlist id %s is not found", "playlist-1")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "Playlist id playlist-1 is not found", err.Error())
}

func TestError_WithCause(t *testing.T) {
	base := Unauthorized("invalid or expired access token")
	err := base.WithCause(io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "invalid or expired access token: unexpected EOF", err.Error())
	assert.Nil(t, base.Unwrap(), "WithCause must not mutate the receiver")
}
