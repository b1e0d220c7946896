package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

// AuditLogsHandlers handles audit logs related HTTP requests
type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

// NewAuditLogsHandlers creates a new audit logs handlers instance
func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// ListAuditLogs retrieves audit logs with filtering and pagination
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	filters := &models.AuditLogFilters{}
	if table := c.QueryParam("table"); table != "" {
		filters.TableName = &table
	}
	if recordID := c.QueryParam("record_id"); recordID != "" {
		filters.RecordID = &recordID
	}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if filters.ChangedBy, err = queryUUID(c, "user_id"); err != nil {
		return err
	}
	if filters.StartDate, err = queryTimestamp(c, "start_date"); err != nil {
		return err
	}
	if filters.EndDate, err = queryTimestamp(c, "end_date"); err != nil {
		return err
	}
	if filters.Limit, filters.Offset, err = pagination(c); err != nil {
		return err
	}

	if err := h.auditLogsService.ValidateAuditFilters(filters); err != nil {
		return err
	}

	logs, err := h.auditLogsService.ListAuditLogs(c.Request().Context(), id.AcademyID, filters)
	if err != nil {
		return err
	}
	return listResponse(c, logs, len(logs), filters.Limit, filters.Offset)
}

// GetAuditLog retrieves a specific audit log entry
func (h *AuditLogsHandlers) GetAuditLog(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	auditLogID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	log, err := h.auditLogsService.GetAuditLog(c.Request().Context(), id.AcademyID, auditLogID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, log)
}

// GetEntityHistory retrieves audit history for a specific entity
func (h *AuditLogsHandlers) GetEntityHistory(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	tableName := c.Param("table")
	recordID := c.Param("record_id")
	if tableName == "" || recordID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Table name and record ID are required")
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}

	logs, err := h.auditLogsService.GetEntityHistory(c.Request().Context(), id.AcademyID, tableName, recordID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":      logs,
		"total":     len(logs),
		"limit":     limit,
		"offset":    offset,
		"table":     tableName,
		"record_id": recordID,
	})
}

// GetTableNames lists the tables that have audit entries, for filter menus.
func (h *AuditLogsHandlers) GetTableNames(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	tables, err := h.auditLogsService.GetTableNames(c.Request().Context(), id.AcademyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tables": tables})
}

// queryTimestamp accepts RFC 3339 timestamps or plain dates.
func queryTimestamp(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	date, err := parseDateField(raw, name)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
