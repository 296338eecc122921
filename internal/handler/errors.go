package handler

import (
	"errors"
	"net/http"

	"otka-backend/internal/service"
)

// statusFor maps service errors onto HTTP status codes. Anything without a
// known sentinel is treated as an internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrNumberingExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrRenderFailed), errors.Is(err, service.ErrMailFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
