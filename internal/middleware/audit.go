package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/services"
)

// requestAuditTable groups request level audit entries apart from the entity
// history written by the services.
const requestAuditTable = "http_requests"

// AuditMiddleware records every mutating request made through the admin API.
type AuditMiddleware struct {
	auditService services.AuditLogsService
}

// NewAuditMiddleware creates a new audit middleware instance
func NewAuditMiddleware(auditService services.AuditLogsService) *AuditMiddleware {
	return &AuditMiddleware{
		auditService: auditService,
	}
}

// AuditRequest logs POST, PUT, PATCH and DELETE requests after they ran. A
// failure to write the entry never fails the request.
func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if !isMutation(method) {
				return err
			}
			ctx := c.Request().Context()
			academyID, ok := common.GetAcademyIDFromContext(ctx)
			if !ok {
				return err
			}
			var changedBy *uuid.UUID
			if userID, ok := common.GetUserIDFromContext(ctx); ok {
				changedBy = &userID
			}

			data := models.JSONB{
				"method":     method,
				"path":       c.Path(),
				"uri":        c.Request().RequestURI,
				"status":     responseStatus(c, err),
				"user_agent": c.Request().UserAgent(),
				"ip":         c.RealIP(),
				"headers":    sanitizeHeaders(c.Request().Header),
			}
			if err != nil {
				data["error"] = err.Error()
			}

			action := method + " " + c.Path()
			if logErr := m.auditService.LogActivity(ctx, academyID, requestAuditTable, c.Path(), action, changedBy, nil, data); logErr != nil {
				logging.Ctx(ctx).Error().Err(logErr).Str("action", action).Msg("failed to log request audit entry")
			}
			return err
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseStatus reports the status the error handler will send for err.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return StatusForError(err)
}

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"proxy-authorization": {},
}

// sanitizeHeaders removes sensitive headers before logging
func sanitizeHeaders(headers http.Header) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(headers))
	for key, values := range headers {
		if _, ok := sensitiveHeaders[strings.ToLower(key)]; ok {
			sanitized[key] = "[REDACTED]"
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}
	return sanitized
}
