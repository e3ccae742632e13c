package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/http/response"
)

// Envelope is a success response carrying a message and typed data.
type Envelope[T any] struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

func (Envelope[T]) enveloped() {}

// Notice is a success response with a message and no data.
type Notice struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}

func (Notice) enveloped() {}

type enveloped interface{ enveloped() }

// reply builds a success envelope.
func reply[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Status: response.StatusSuccess, Message: message, Data: data}
}

// notice builds a message-only success response.
func notice(message string) Notice {
	return Notice{Status: response.StatusSuccess, Message: message}
}

// EnvelopeTransformer wraps bare response bodies in the success envelope.
// Bodies that are already envelopes and error bodies pass through.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch v.(type) {
	case nil:
		return v, nil
	case enveloped, *APIError, *huma.ErrorModel:
		return v, nil
	}
	return response.Envelope{Status: response.StatusSuccess, Data: v}, nil
}
