package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dojohub/internal/jobs"
	"dojohub/internal/logging"
	"dojohub/internal/services"
)

type OverdueSuspensionRunner interface {
	Run(ctx context.Context, now time.Time) (*jobs.SuspensionResult, error)
}

type TrialExpiryRunner interface {
	Run(ctx context.Context, now time.Time) (*jobs.TrialExpiryResult, error)
}

type MaterializeRunner interface {
	Run(ctx context.Context, now time.Time) (*services.MaterializeResult, error)
}

type DashboardRefresher interface {
	RefreshAll(ctx context.Context) (*jobs.AnalyticsRefreshResult, error)
}

// JobHandlers exposes the periodic jobs under /v1/cron for external
// schedulers. Every route sits behind middleware.CronAuth.
type JobHandlers struct {
	suspension   OverdueSuspensionRunner
	trials       TrialExpiryRunner
	materializer MaterializeRunner
	dashboards   DashboardRefresher
	now          func() time.Time
}

func NewJobHandlers(suspension OverdueSuspensionRunner, trials TrialExpiryRunner, materializer MaterializeRunner, dashboards DashboardRefresher) *JobHandlers {
	return &JobHandlers{
		suspension:   suspension,
		trials:       trials,
		materializer: materializer,
		dashboards:   dashboards,
		now:          time.Now,
	}
}

// SuspendOverdue handles POST /v1/cron/suspend-overdue
func (h *JobHandlers) SuspendOverdue(c echo.Context) error {
	result, err := h.suspension.Run(c.Request().Context(), h.now())
	if err != nil {
		return jobFailed(c, jobs.OverdueSuspensionJob, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ExpireTrials handles POST /v1/cron/expire-trials
func (h *JobHandlers) ExpireTrials(c echo.Context) error {
	result, err := h.trials.Run(c.Request().Context(), h.now())
	if err != nil {
		return jobFailed(c, jobs.TrialExpiryJob, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Materialize handles POST /v1/cron/materialize
func (h *JobHandlers) Materialize(c echo.Context) error {
	result, err := h.materializer.Run(c.Request().Context(), h.now())
	if err != nil {
		return jobFailed(c, jobs.ScheduleMaterializerJob, err)
	}
	return c.JSON(http.StatusOK, result)
}

// RefreshDashboards handles POST /v1/cron/refresh-dashboards
func (h *JobHandlers) RefreshDashboards(c echo.Context) error {
	result, err := h.dashboards.RefreshAll(c.Request().Context())
	if err != nil {
		return jobFailed(c, jobs.AnalyticsRefreshJob, err)
	}
	return c.JSON(http.StatusOK, result)
}

func jobFailed(c echo.Context, job string, err error) error {
	logging.Ctx(c.Request().Context()).Error().Err(err).Str("job", job).Msg("cron job failed")
	return err
}
