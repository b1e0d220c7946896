// Package handlers holds the echo handlers of the /v1 API. Handlers parse
// and validate input, call one service method and render the result; service
// errors are returned unchanged and rendered by middleware.HTTPErrorHandler.
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dojohub/internal/common"
	"dojohub/internal/models"
	"dojohub/internal/services"
)

// maxUploadSize bounds multipart files (logos, proofs, receipts, documents).
const maxUploadSize = 20 << 20

// identity is the authenticated caller.
type identity struct {
	UserID    uuid.UUID
	AcademyID uuid.UUID
	Role      models.Role
}

func callerIdentity(c echo.Context) (identity, error) {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	academyID, ok := common.GetAcademyIDFromContext(ctx)
	if !ok {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "Academy not found")
	}
	role, _ := common.GetRoleFromContext(ctx)
	return identity{UserID: userID, AcademyID: academyID, Role: role}, nil
}

// bindAndValidate binds the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return c.Validate(req)
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, &services.FieldError{Field: name, Message: err.Error()}
	}
	return id, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &services.FieldError{Field: name, Message: name + " must be a valid UUID"}
	}
	return &id, nil
}

func queryDate(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := common.ParseDate(raw, name)
	if err != nil {
		return time.Time{}, &services.FieldError{Field: name, Message: err.Error()}
	}
	return date, nil
}

func queryBool(c echo.Context, name string, def bool) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}

func pagination(c echo.Context) (int, int, error) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return 0, 0, &services.FieldError{Field: "offset", Message: err.Error()}
	}
	return limit, offset, nil
}

// listResponse is the envelope of every list endpoint.
func listResponse(c echo.Context, data interface{}, total, limit, offset int) error {
	resp := map[string]interface{}{
		"data":  data,
		"total": total,
	}
	if limit > 0 {
		resp["limit"] = limit
		resp["offset"] = offset
	}
	return c.JSON(http.StatusOK, resp)
}

// formUpload opens the multipart file field. It returns nil, nil when the
// field is absent and optional.
func formUpload(c echo.Context, field string, required bool) (*services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			if required {
				return nil, func() {}, &services.FieldError{Field: field, Message: field + " is required"}
			}
			return nil, func() {}, nil
		}
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	if fh.Size > maxUploadSize {
		return nil, func() {}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds 20MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
	}
	upload := &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}
	return upload, func() { _ = f.Close() }, nil
}

func parseDateField(raw, field string) (time.Time, error) {
	date, err := common.ParseDate(raw, field)
	if err != nil {
		return time.Time{}, &services.FieldError{Field: field, Message: err.Error()}
	}
	return date, nil
}
