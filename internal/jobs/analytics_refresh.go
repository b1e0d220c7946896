package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/analytics"
	"dojohub/internal/logging"
	"dojohub/internal/metrics"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

const AnalyticsRefreshJob = "dashboard-refresh"

// refreshConcurrency bounds the academies refreshed at once.
const refreshConcurrency = 5

type AnalyticsRefreshResult struct {
	Academies int       `json:"academies"`
	Refreshed int       `json:"refreshed"`
	Failed    int       `json:"failed"`
	RefreshAt time.Time `json:"refreshed_at"`
}

// AnalyticsRefreshService recomputes the cached admin dashboard of every
// live academy so the first page load after expiry stays fast.
type AnalyticsRefreshService struct {
	academyRepo repositories.AcademyRepository
	dashboards  analytics.Dashboards
}

func NewAnalyticsRefreshService(academyRepo repositories.AcademyRepository, dashboards analytics.Dashboards) *AnalyticsRefreshService {
	return &AnalyticsRefreshService{
		academyRepo: academyRepo,
		dashboards:  dashboards,
	}
}

func (a *AnalyticsRefreshService) RefreshAcademy(ctx context.Context, academyID uuid.UUID) error {
	if err := a.dashboards.Invalidate(ctx, academyID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("academy_id", academyID.String()).Msg("failed to invalidate dashboard cache")
	}
	_, err := a.dashboards.GetDashboard(ctx, academyID)
	return err
}

func (a *AnalyticsRefreshService) RefreshAll(ctx context.Context) (result *AnalyticsRefreshResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordJobRun(AnalyticsRefreshJob, err == nil, time.Since(start))
	}()

	academies, err := a.academyRepo.ListByStatus(ctx, models.AcademyStatusActive, models.AcademyStatusTrial)
	if err != nil {
		return nil, err
	}

	var refreshed, failed atomic.Int64
	semaphore := make(chan struct{}, refreshConcurrency)
	var wg sync.WaitGroup
	for _, academy := range academies {
		wg.Add(1)
		go func(academyID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := a.RefreshAcademy(ctx, academyID); err != nil {
				failed.Add(1)
				logging.Ctx(ctx).Error().Err(err).Str("academy_id", academyID.String()).Msg("failed to refresh dashboard")
				return
			}
			refreshed.Add(1)
		}(academy.ID)
	}
	wg.Wait()

	result = &AnalyticsRefreshResult{
		Academies: len(academies),
		Refreshed: int(refreshed.Load()),
		Failed:    int(failed.Load()),
		RefreshAt: time.Now(),
	}
	metrics.RecordJobItems(AnalyticsRefreshJob, "refreshed", result.Refreshed)
	metrics.RecordJobItems(AnalyticsRefreshJob, "failed", result.Failed)
	logging.Info().Int("academies", result.Academies).Int("refreshed", result.Refreshed).Msg("dashboard refresh finished")
	return result, nil
}
