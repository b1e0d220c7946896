package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type CreateMembershipRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	PlanID    string `json:"plan_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Trial     bool   `json:"trial"`
}

type MembershipService interface {
	CreateMembership(ctx context.Context, academyID, actorID uuid.UUID, req *CreateMembershipRequest) (*models.Membership, error)
	GetMembership(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error)
	ListMemberships(ctx context.Context, academyID uuid.UUID, filters *models.MembershipFilters) ([]*models.Membership, error)
	ListForUser(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Membership, error)
	ChangeStatus(ctx context.Context, academyID, actorID, id uuid.UUID, status models.MembershipStatus) (*models.Membership, error)
	CancelMembership(ctx context.Context, academyID, actorID, id uuid.UUID) (*models.Membership, error)
	// ApplyPaidPayment runs inside the payment transaction of r.
	ApplyPaidPayment(ctx context.Context, r *repositories.TxRepos, payment *models.Payment, changedBy *uuid.UUID) error
}

type membershipService struct {
	txManager      repositories.TxManager
	membershipRepo repositories.MembershipRepository
	trialDays      int
	now            func() time.Time
}

func NewMembershipService(txManager repositories.TxManager, membershipRepo repositories.MembershipRepository, defaultTrialDays int) MembershipService {
	return &membershipService{
		txManager:      txManager,
		membershipRepo: membershipRepo,
		trialDays:      defaultTrialDays,
		now:            time.Now,
	}
}

// localDate is the calendar date of t in loc, as a UTC midnight value the
// way DATE columns are scanned.
func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *membershipService) CreateMembership(ctx context.Context, academyID, actorID uuid.UUID, req *CreateMembershipRequest) (*models.Membership, error) {
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return nil, invalidField("user_id", "%s", err.Error())
	}
	planID, err := common.ValidateUUID(req.PlanID, "plan_id")
	if err != nil {
		return nil, invalidField("plan_id", "%s", err.Error())
	}
	startDate, err := common.ParseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		return nil, invalidField("start_date", "%s", err.Error())
	}

	var membership *models.Membership
	err = s.txManager.WithinTx(ctx, func(r *repositories.TxRepos) error {
		academy, err := r.Academies.GetByID(ctx, academyID)
		if err != nil {
			return notFound("academy", err)
		}
		user, err := loadStudent(ctx, r.Users, academyID, userID, "user_id")
		if err != nil {
			return err
		}
		if user.Status == models.UserStatusInactive {
			return invalidField("user_id", "user_id must be an active or suspended student")
		}
		plan, err := r.Plans.GetByID(ctx, academyID, planID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return invalidField("plan_id", "plan_id does not exist")
			}
			return err
		}
		if !plan.Active {
			return invalidField("plan_id", "plan is not active")
		}

		live, err := r.Memberships.FindLiveByUser(ctx, academyID, userID)
		if err != nil && !repositories.IsNotFound(err) {
			return fmt.Errorf("check live membership: %w", err)
		}
		if live != nil {
			return conflict("user already has a %s membership", live.Status)
		}

		now := s.now().UTC()
		start := localDate(now, academy.Location())
		if startDate != nil {
			start = *startDate
		}
		membership = &models.Membership{
			ID:              uuid.New(),
			AcademyID:       academyID,
			UserID:          userID,
			PlanID:          planID,
			Status:          models.MembershipActive,
			StartDate:       start,
			NextBillingDate: start,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if req.Trial {
			days := plan.TrialDays
			if days <= 0 {
				days = s.trialDays
			}
			trialEnds := start.AddDate(0, 0, days)
			membership.Status = models.MembershipTrial
			membership.TrialEndsAt = &trialEnds
			membership.NextBillingDate = trialEnds
		}

		if err := r.Memberships.Create(ctx, membership); err != nil {
			if repositories.IsUniqueViolation(err) {
				return conflict("user already has an active membership")
			}
			return fmt.Errorf("create membership: %w", err)
		}
		return writeAudit(ctx, r.AuditLogs, academyID, "memberships", membership.ID.String(), models.ActionInsert, &actorID,
			nil, models.JSONB{"user_id": userID.String(), "plan_id": planID.String(), "status": string(membership.Status)})
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *membershipService) GetMembership(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error) {
	m, err := s.membershipRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("membership", err)
	}
	return m, nil
}

func (s *membershipService) ListMemberships(ctx context.Context, academyID uuid.UUID, filters *models.MembershipFilters) ([]*models.Membership, error) {
	if filters == nil {
		filters = &models.MembershipFilters{}
	}
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, invalidField("status", "unknown membership status %q", *filters.Status)
	}
	return s.membershipRepo.List(ctx, academyID, filters)
}

func (s *membershipService) ListForUser(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Membership, error) {
	return s.membershipRepo.List(ctx, academyID, &models.MembershipFilters{UserID: &userID})
}

// ChangeStatus enforces the transition table. Moving to the current status
// is a no-op.
func (s *membershipService) ChangeStatus(ctx context.Context, academyID, actorID, id uuid.UUID, status models.MembershipStatus) (*models.Membership, error) {
	if !status.Valid() {
		return nil, invalidField("status", "unknown membership status %q", status)
	}

	var membership *models.Membership
	err := s.txManager.WithinTx(ctx, func(r *repositories.TxRepos) error {
		m, err := r.Memberships.GetByIDForUpdate(ctx, academyID, id)
		if err != nil {
			return notFound("membership", err)
		}
		membership = m
		if m.Status == status {
			return nil
		}
		if !m.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: membership %s -> %s", ErrInvalidTransition, m.Status, status)
		}
		if status == models.MembershipActive {
			other, err := r.Memberships.HasOtherActive(ctx, academyID, m.UserID, m.ID)
			if err != nil {
				return fmt.Errorf("check active membership: %w", err)
			}
			if other {
				return conflict("user already has an active membership")
			}
		}

		old := m.Status
		m.Status = status
		if status == models.MembershipCancelled {
			now := s.now().UTC()
			m.CancelledAt = &now
		}
		if err := r.Memberships.Update(ctx, m); err != nil {
			if repositories.IsUniqueViolation(err) {
				return conflict("user already has an active membership")
			}
			return notFound("membership", err)
		}
		return writeAudit(ctx, r.AuditLogs, academyID, "memberships", m.ID.String(), models.ActionStatusChange, &actorID,
			statusValues(string(old)), statusValues(string(status)))
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *membershipService) CancelMembership(ctx context.Context, academyID, actorID, id uuid.UUID) (*models.Membership, error) {
	return s.ChangeStatus(ctx, academyID, actorID, id, models.MembershipCancelled)
}

// ApplyPaidPayment activates the linked membership and advances
// next_billing_date by one interval from the later of the current due date and
// the paid day. Payments below the plan price leave the membership untouched.
func (s *membershipService) ApplyPaidPayment(ctx context.Context, r *repositories.TxRepos, payment *models.Payment, changedBy *uuid.UUID) error {
	if payment.MembershipID == nil {
		return nil
	}
	academyID := payment.AcademyID

	m, err := r.Memberships.GetByIDForUpdate(ctx, academyID, *payment.MembershipID)
	if err != nil {
		return notFound("membership", err)
	}
	if m.Status.Terminal() {
		logging.Ctx(ctx).Warn().
			Str("membership_id", m.ID.String()).
			Str("payment_id", payment.ID.String()).
			Str("status", string(m.Status)).
			Msg("paid payment linked to a closed membership")
		return nil
	}

	academy, err := r.Academies.GetByID(ctx, academyID)
	if err != nil {
		return notFound("academy", err)
	}
	plan, err := r.Plans.GetByID(ctx, academyID, m.PlanID)
	if err != nil {
		return notFound("plan", err)
	}
	// partial payments never settle a period
	if payment.Amount.LessThan(plan.Price) {
		logging.Ctx(ctx).Info().
			Str("membership_id", m.ID.String()).
			Str("payment_id", payment.ID.String()).
			Str("amount", payment.Amount.String()).
			Str("price", plan.Price.String()).
			Msg("paid amount below plan price, membership unchanged")
		return nil
	}

	old := m.Status
	if m.Status != models.MembershipActive {
		other, err := r.Memberships.HasOtherActive(ctx, academyID, m.UserID, m.ID)
		if err != nil {
			return fmt.Errorf("check active membership: %w", err)
		}
		if other {
			return conflict("user already has another active membership")
		}
		m.Status = models.MembershipActive
	}

	paidAt := s.now()
	if payment.PaidAt != nil {
		paidAt = *payment.PaidAt
	}
	base := m.NextBillingDate
	if paidDay := localDate(paidAt, academy.Location()); paidDay.After(base) {
		base = paidDay
	}
	m.NextBillingDate = plan.Interval.AddTo(base)

	if err := r.Memberships.Update(ctx, m); err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if _, err := r.Users.ReactivateIfSuspended(ctx, academyID, m.UserID); err != nil {
		return fmt.Errorf("reactivate user: %w", err)
	}

	return writeAudit(ctx, r.AuditLogs, academyID, "memberships", m.ID.String(), models.ActionStatusChange, changedBy,
		models.JSONB{"status": string(old)},
		models.JSONB{"status": string(m.Status), "next_billing_date": m.NextBillingDate.Format(common.DateLayout), "payment_id": payment.ID.String()})
}
