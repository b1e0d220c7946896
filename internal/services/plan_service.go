package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type PlanRequest struct {
	Name           string          `json:"name" validate:"required,max=120"`
	Description    *string         `json:"description" validate:"omitempty,max=1000"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency" validate:"omitempty,iso4217"`
	Interval       string          `json:"interval" validate:"required,oneof=MONTHLY QUARTERLY YEARLY"`
	ClassesPerWeek *int            `json:"classes_per_week" validate:"omitempty,gte=1,lte=14"`
	TrialDays      int             `json:"trial_days" validate:"gte=0,lte=90"`
	Active         *bool           `json:"active"`
}

type PlanService interface {
	CreatePlan(ctx context.Context, academyID uuid.UUID, req *PlanRequest) (*models.Plan, error)
	GetPlan(ctx context.Context, academyID, id uuid.UUID) (*models.Plan, error)
	UpdatePlan(ctx context.Context, academyID, id uuid.UUID, req *PlanRequest) (*models.Plan, error)
	DeletePlan(ctx context.Context, academyID, id uuid.UUID) error
	ListPlans(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.Plan, error)
}

type planService struct {
	planRepo    repositories.PlanRepository
	academyRepo repositories.AcademyRepository
}

func NewPlanService(planRepo repositories.PlanRepository, academyRepo repositories.AcademyRepository) PlanService {
	return &planService{planRepo: planRepo, academyRepo: academyRepo}
}

func (s *planService) apply(plan *models.Plan, req *PlanRequest) error {
	if !req.Price.IsPositive() {
		return invalidField("price", "price must be greater than 0")
	}
	interval := models.BillingInterval(req.Interval)
	if !interval.Valid() {
		return invalidField("interval", "interval must be one of: MONTHLY QUARTERLY YEARLY")
	}
	plan.Name = strings.TrimSpace(req.Name)
	plan.Description = req.Description
	plan.Price = req.Price.Round(2)
	plan.Interval = interval
	plan.ClassesPerWeek = req.ClassesPerWeek
	plan.TrialDays = req.TrialDays
	if req.Currency != "" {
		plan.Currency = strings.ToUpper(req.Currency)
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}
	return nil
}

func (s *planService) CreatePlan(ctx context.Context, academyID uuid.UUID, req *PlanRequest) (*models.Plan, error) {
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}

	now := time.Now().UTC()
	plan := &models.Plan{
		ID:        uuid.New(),
		AcademyID: academyID,
		Currency:  academy.Currency,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(plan, req); err != nil {
		return nil, err
	}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("plan %q already exists", plan.Name)
		}
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, academyID, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("plan", err)
	}
	return plan, nil
}

func (s *planService) UpdatePlan(ctx context.Context, academyID, id uuid.UUID, req *PlanRequest) (*models.Plan, error) {
	plan, err := s.GetPlan(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(plan, req); err != nil {
		return nil, err
	}
	plan.UpdatedAt = time.Now().UTC()
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, notFound("plan", err)
	}
	return plan, nil
}

// DeletePlan refuses plans that still back a live membership. Those plans
// should be deactivated instead.
func (s *planService) DeletePlan(ctx context.Context, academyID, id uuid.UUID) error {
	if _, err := s.GetPlan(ctx, academyID, id); err != nil {
		return err
	}
	live, err := s.planRepo.CountLiveMemberships(ctx, academyID, id)
	if err != nil {
		return fmt.Errorf("count memberships: %w", err)
	}
	if live > 0 {
		return conflict("plan has %d live memberships, deactivate it instead", live)
	}
	if err := s.planRepo.Delete(ctx, academyID, id); err != nil {
		return notFound("plan", err)
	}
	return nil
}

func (s *planService) ListPlans(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.Plan, error) {
	return s.planRepo.List(ctx, academyID, activeOnly)
}
