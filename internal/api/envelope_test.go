package api

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transformToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	out, err := EnvelopeTransformer(nil, "200", v)
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestEnvelopeTransformer_WrapsBareBody(t *testing.T) {
	m := transformToMap(t, map[string]string{"albumId": "album-1"})

	assert.Equal(t, "success", m["status"])
	assert.Equal(t, map[string]any{"albumId": "album-1"}, m["data"])
	assert.NotContains(t, m, "message")
}

func TestEnvelopeTransformer_KeepsEnvelopes(t *testing.T) {
	m := transformToMap(t, reply("Album has been added", AlbumIDData{AlbumID: "album-1"}))
	assert.Equal(t, "success", m["status"])
	assert.Equal(t, "Album has been added", m["message"])
	assert.Equal(t, map[string]any{"albumId": "album-1"}, m["data"])

	m = transformToMap(t, notice("Album has been deleted"))
	assert.Equal(t, map[string]any{"status": "success", "message": "Album has been deleted"}, m)
}

func TestEnvelopeTransformer_KeepsErrors(t *testing.T) {
	apiErr := &APIError{Status: "fail", Code: "NOT_FOUND", Message: "Album is not found"}

	out, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)
	assert.Same(t, apiErr, out)
}
