package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/services"
	"dojohub/internal/validation"
)

// StatusForError maps a service error to its HTTP status.
func StatusForError(err error) int {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrProvider):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

var statusCodes = map[int]string{
	http.StatusBadRequest:            "VALIDATION_ERROR",
	http.StatusUnauthorized:          "UNAUTHORIZED",
	http.StatusForbidden:             "FORBIDDEN",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusConflict:              "CONFLICT",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       "RATE_LIMITED",
	http.StatusBadGateway:            "PROVIDER_ERROR",
	http.StatusServiceUnavailable:    "UNAVAILABLE",
}

func errorCode(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= 500 {
		return "SERVER_ERROR"
	}
	return "BAD_REQUEST"
}

// HTTPErrorHandler renders every handler error in the common error envelope.
// Internal errors are logged and replaced with a generic message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := StatusForError(err)
	message := err.Error()
	var details map[string]string

	var (
		he       *echo.HTTPError
		verr     *validation.RequestValidationError
		fieldErr *services.FieldError
	)
	switch {
	case errors.As(err, &he):
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
		if status == http.StatusBadRequest {
			// echo reports bind failures as 400
			details = map[string]string{"body": message}
			message = "Validation failed"
		}
	case errors.As(err, &verr):
		message = "Validation failed"
		details = verr.Details()
	case errors.As(err, &fieldErr):
		message = "Validation failed"
		details = map[string]string{fieldErr.Field: fieldErr.Message}
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request().Context()).Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
		if he == nil {
			message = "Internal server error"
		}
	}
	if status == http.StatusBadGateway {
		message = "Payment provider unavailable"
	}

	resp := common.CreateErrorResponse(errorCode(status), message, details)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		logging.Ctx(c.Request().Context()).Error().Err(err).Msg("failed to write error response")
	}
}
