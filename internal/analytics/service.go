package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/caching"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

const (
	dashboardTTL      = 5 * time.Minute
	attendanceWindow  = 30 * 24 * time.Hour
	upcomingInstances = 7 * 24 * time.Hour
)

// Dashboards is what the handlers need from the dashboard service.
type Dashboards interface {
	GetDashboard(ctx context.Context, academyID uuid.UUID) (*models.Dashboard, error)
	Invalidate(ctx context.Context, academyID uuid.UUID) error
}

// DashboardService computes the admin dashboard from aggregate queries and
// caches it in redis.
type DashboardService struct {
	academyRepo    repositories.AcademyRepository
	membershipRepo repositories.MembershipRepository
	paymentRepo    repositories.PaymentRepository
	attendanceRepo repositories.AttendanceRepository
	instanceRepo   repositories.ClassInstanceRepository
	cacheService   caching.CacheService
	now            func() time.Time
}

func NewDashboardService(
	academyRepo repositories.AcademyRepository,
	membershipRepo repositories.MembershipRepository,
	paymentRepo repositories.PaymentRepository,
	attendanceRepo repositories.AttendanceRepository,
	instanceRepo repositories.ClassInstanceRepository,
	cacheService caching.CacheService,
) *DashboardService {
	return &DashboardService{
		academyRepo:    academyRepo,
		membershipRepo: membershipRepo,
		paymentRepo:    paymentRepo,
		attendanceRepo: attendanceRepo,
		instanceRepo:   instanceRepo,
		cacheService:   cacheService,
		now:            time.Now,
	}
}

// GetDashboard serves the cached dashboard when present. Cache failures are
// logged and the dashboard is computed from the database.
func (a *DashboardService) GetDashboard(ctx context.Context, academyID uuid.UUID) (*models.Dashboard, error) {
	cached, err := a.cacheService.GetDashboard(ctx, academyID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("academy_id", academyID.String()).Msg("dashboard cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	dashboard, err := a.CalculateDashboard(ctx, academyID)
	if err != nil {
		return nil, err
	}
	if err := a.cacheService.SetDashboard(ctx, academyID, dashboard, dashboardTTL); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("academy_id", academyID.String()).Msg("dashboard cache write failed")
	}
	return dashboard, nil
}

func (a *DashboardService) CalculateDashboard(ctx context.Context, academyID uuid.UUID) (*models.Dashboard, error) {
	academy, err := a.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, fmt.Errorf("load academy: %w", err)
	}
	now := a.now().UTC()
	data := &models.Dashboard{GeneratedAt: now}

	counts, err := a.membershipRepo.CountByStatus(ctx, academyID)
	if err != nil {
		return nil, fmt.Errorf("count memberships: %w", err)
	}
	data.ActiveMembers = counts[models.MembershipActive]
	data.TrialMembers = counts[models.MembershipTrial]
	data.PastDueMembers = counts[models.MembershipPastDue]

	// Revenue is counted from the first day of the month in the academy timezone.
	local := now.In(academy.Location())
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, academy.Location())
	data.RevenueThisMonth, err = a.paymentRepo.SumPaidBetween(ctx, academyID, monthStart.UTC(), now)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	data.PendingTransfers, err = a.paymentRepo.Count(ctx, academyID, models.MethodBankTransfer, models.PaymentProcessing)
	if err != nil {
		return nil, fmt.Errorf("count pending transfers: %w", err)
	}

	data.AttendanceLast30Days, err = a.attendanceRepo.CountSince(ctx, academyID, now.Add(-attendanceWindow))
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	data.UpcomingInstances, err = a.instanceRepo.CountScheduledBetween(ctx, academyID, now, now.Add(upcomingInstances))
	if err != nil {
		return nil, fmt.Errorf("count upcoming instances: %w", err)
	}

	return data, nil
}

// Invalidate drops the cached dashboard of an academy.
func (a *DashboardService) Invalidate(ctx context.Context, academyID uuid.UUID) error {
	logging.Ctx(ctx).Debug().Str("academy_id", academyID.String()).Msg("invalidating dashboard cache")
	return a.cacheService.DeleteDashboard(ctx, academyID)
}
