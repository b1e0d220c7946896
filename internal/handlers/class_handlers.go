package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

// ClassHandlers serves classes, weekly schedules, dated instances and the
// attendance taken on them.
type ClassHandlers struct {
	classService      services.ClassService
	attendanceService services.AttendanceService
	materializer      services.Materializer
}

func NewClassHandlers(classService services.ClassService, attendanceService services.AttendanceService, materializer services.Materializer) *ClassHandlers {
	return &ClassHandlers{
		classService:      classService,
		attendanceService: attendanceService,
		materializer:      materializer,
	}
}

// GenerateRequest is the date range to materialize, both ends inclusive.
type GenerateRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

func (h *ClassHandlers) ListClasses(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	classes, err := h.classService.ListClasses(c.Request().Context(), id.AcademyID)
	if err != nil {
		return err
	}
	return listResponse(c, classes, len(classes), 0, 0)
}

func (h *ClassHandlers) GetClass(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	class, err := h.classService.GetClass(c.Request().Context(), id.AcademyID, classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, class)
}

func (h *ClassHandlers) CreateClass(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.ClassRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	class, err := h.classService.CreateClass(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, class)
}

func (h *ClassHandlers) UpdateClass(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ClassRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	class, err := h.classService.UpdateClass(c.Request().Context(), id.AcademyID, classID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, class)
}

func (h *ClassHandlers) DeleteClass(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.classService.DeleteClass(c.Request().Context(), id.AcademyID, classID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ClassHandlers) ListSchedules(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	classID, err := queryUUID(c, "class_id")
	if err != nil {
		return err
	}
	schedules, err := h.classService.ListSchedules(c.Request().Context(), id.AcademyID, classID)
	if err != nil {
		return err
	}
	return listResponse(c, schedules, len(schedules), 0, 0)
}

func (h *ClassHandlers) GetSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	scheduleID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	schedule, err := h.classService.GetSchedule(c.Request().Context(), id.AcademyID, scheduleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}

func (h *ClassHandlers) CreateSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.ScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	schedule, err := h.classService.CreateSchedule(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, schedule)
}

func (h *ClassHandlers) UpdateSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	scheduleID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	schedule, err := h.classService.UpdateSchedule(c.Request().Context(), id.AcademyID, scheduleID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}

func (h *ClassHandlers) DeleteSchedule(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	scheduleID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.classService.DeleteSchedule(c.Request().Context(), id.AcademyID, scheduleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListInstances serves both the admin calendar and the student schedule.
// Students never see cancelled or completed instances.
func (h *ClassHandlers) ListInstances(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	filters := &models.InstanceFilters{}
	if filters.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if filters.To, err = queryDate(c, "to"); err != nil {
		return err
	}
	if filters.ClassID, err = queryUUID(c, "class_id"); err != nil {
		return err
	}
	if raw := strings.ToUpper(c.QueryParam("status")); raw != "" {
		status := models.InstanceStatus(raw)
		filters.Status = &status
	}

	instances, err := h.classService.ListInstances(c.Request().Context(), id.AcademyID, id.Role, filters)
	if err != nil {
		return err
	}
	return listResponse(c, instances, len(instances), 0, 0)
}

func (h *ClassHandlers) GetInstance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	instanceID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	instance, err := h.classService.GetInstance(c.Request().Context(), id.AcademyID, instanceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, instance)
}

// CreateInstance adds a one-off instance outside any weekly schedule.
func (h *ClassHandlers) CreateInstance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.InstanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	instance, err := h.classService.CreateInstance(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, instance)
}

func (h *ClassHandlers) CancelInstance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	instanceID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	instance, err := h.classService.CancelInstance(c.Request().Context(), id.AcademyID, instanceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, instance)
}

// GenerateInstances materializes the academy's schedules into instances.
// Re-running a range is safe: existing instances are skipped.
func (h *ClassHandlers) GenerateInstances(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req GenerateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	from, err := parseDateField(req.From, "from")
	if err != nil {
		return err
	}
	to, err := parseDateField(req.To, "to")
	if err != nil {
		return err
	}
	result, err := h.materializer.Materialize(c.Request().Context(), id.AcademyID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// InstanceQR issues a short-lived check-in token. With ?format=png the QR
// image is returned instead of JSON.
func (h *ClassHandlers) InstanceQR(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	instanceID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	qr, err := h.attendanceService.IssueQR(c.Request().Context(), id.AcademyID, instanceID)
	if err != nil {
		return err
	}
	if c.QueryParam("format") == "png" {
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.Blob(http.StatusOK, "image/png", qr.PNG)
	}
	return c.JSON(http.StatusOK, qr)
}

func (h *ClassHandlers) ListAttendance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	instanceID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	records, err := h.attendanceService.ListForInstance(c.Request().Context(), id.AcademyID, instanceID)
	if err != nil {
		return err
	}
	return listResponse(c, records, len(records), 0, 0)
}

// RecordAttendance marks a student present by hand.
func (h *ClassHandlers) RecordAttendance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	instanceID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ManualAttendanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	record, err := h.attendanceService.RecordManual(c.Request().Context(), id.AcademyID, id.UserID, instanceID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *ClassHandlers) DeleteAttendance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	attendanceID, err := paramUUID(c, "attendance_id")
	if err != nil {
		return err
	}
	if err := h.attendanceService.DeleteAttendance(c.Request().Context(), id.AcademyID, attendanceID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckIn redeems a QR token for the calling student.
func (h *ClassHandlers) CheckIn(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.CheckInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	record, err := h.attendanceService.CheckIn(c.Request().Context(), id.AcademyID, id.UserID, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

// MyAttendance lists the caller's attendance with the aggregate stats.
func (h *ClassHandlers) MyAttendance(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	records, err := h.attendanceService.ListForUser(ctx, id.AcademyID, id.UserID, limit, offset)
	if err != nil {
		return err
	}
	stats, err := h.attendanceService.Stats(ctx, id.AcademyID, id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   records,
		"stats":  stats,
		"limit":  limit,
		"offset": offset,
	})
}
