package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/http/response"
	"github.com/openmusic/openmusic-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Status  string `json:"status" enum:"fail,error" doc:"fail for client errors, error for server errors"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func newAPIError(status int, code domainerrors.Code, message string, details any) *APIError {
	return &APIError{
		status:  status,
		Status:  response.StatusFor(status),
		Code:    string(code),
		Message: message,
		Details: details,
	}
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
// Server errors are logged with their cause and rendered without it.
func RegisterErrorHandler(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	internalError := func(errs []error) *APIError {
		logger.Error("Request failed", "error", errors.Join(errs...))
		return newAPIError(http.StatusInternalServerError, domainerrors.CodeInternal, "Sorry, the server encountered an error", nil)
	}

	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var details []*huma.ErrorDetail

		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				if domainErr.HTTPStatus() >= http.StatusInternalServerError {
					return internalError(errs)
				}
				return newAPIError(domainErr.HTTPStatus(), domainErr.Code, domainErr.Message, domainErr.Details)
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
				return newAPIError(storeErr.HTTPCode(), response.CodeForStatus(storeErr.HTTPCode()), storeErr.Message, nil)
			}

			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				details = append(details, detail)
			}
		}

		// Schema and parse failures are client errors like any other bad payload.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		if status >= http.StatusInternalServerError {
			return internalError(errs)
		}

		apiErr := newAPIError(status, response.CodeForStatus(status), message, nil)
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}
