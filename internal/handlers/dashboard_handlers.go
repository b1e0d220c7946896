package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/analytics"
)

type DashboardHandlers struct {
	dashboards analytics.Dashboards
}

func NewDashboardHandlers(dashboards analytics.Dashboards) *DashboardHandlers {
	return &DashboardHandlers{dashboards: dashboards}
}

// GetDashboard returns the admin dashboard, served from cache for up to
// five minutes. ?refresh=true recomputes it.
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if queryBool(c, "refresh", false) {
		if err := h.dashboards.Invalidate(ctx, id.AcademyID); err != nil {
			return err
		}
	}
	dashboard, err := h.dashboards.GetDashboard(ctx, id.AcademyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard)
}
