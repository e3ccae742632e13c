// Package service implements the catalog, playlist and account use cases on top
// of the store. Services validate payloads, enforce access rules and translate
// store errors into domain errors; handlers only shape requests and responses.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/store"
	"github.com/openmusic/openmusic-server/internal/validation"
)

// validate is the shared payload validator.
var validate = validation.New()

// fromStore converts store sentinels into domain errors. notFound is used as the
// message when the row is missing; other store errors are wrapped for context.
func fromStore(err error, notFound, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFound).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(err.Error()).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error()).WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
