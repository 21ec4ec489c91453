package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrValidationFailed),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrMissingCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTokenExchangeFailed), errors.Is(err, domain.ErrRefreshFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode names an error class for redirects and JSON bodies.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrMissingCode):
		return "missing_code"
	case errors.Is(err, domain.ErrTokenExchangeFailed):
		return "token_exchange_failed"
	case errors.Is(err, domain.ErrRefreshFailed):
		return "refresh_failed"
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth_required"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "server_error"
	}
}

// writeError renders err as a JSON error body.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	body := echo.Map{"error": err.Error(), "code": errorCode(err)}

	var missing *domain.MissingSettingsError
	if errors.As(err, &missing) {
		body["missing"] = missing.Keys
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		body["upstreamStatus"] = upstream.StatusCode
	}

	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, body)
}
