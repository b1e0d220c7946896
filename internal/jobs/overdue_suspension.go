package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/logging"
	"dojohub/internal/metrics"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

const OverdueSuspensionJob = "overdue-suspension"

// SuspensionResult is returned by the cron endpoint.
type SuspensionResult struct {
	Scanned   int `json:"scanned"`
	Suspended int `json:"suspended"`
	Failed    int `json:"failed"`
}

// OverdueSuspension moves memberships whose billing date passed more than the
// grace period ago to PAST_DUE and suspends their users.
type OverdueSuspension struct {
	txManager      repositories.TxManager
	membershipRepo repositories.MembershipRepository
	grace          time.Duration
}

func NewOverdueSuspension(txManager repositories.TxManager, membershipRepo repositories.MembershipRepository, grace time.Duration) *OverdueSuspension {
	return &OverdueSuspension{
		txManager:      txManager,
		membershipRepo: membershipRepo,
		grace:          grace,
	}
}

// Run scans every academy. A failing row is logged and counted and the scan
// goes on.
func (j *OverdueSuspension) Run(ctx context.Context, now time.Time) (result *SuspensionResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordJobRun(OverdueSuspensionJob, err == nil, time.Since(start))
	}()

	cutoff := now.Add(-j.grace)
	overdue, err := j.membershipRepo.ListOverdue(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue memberships: %w", err)
	}

	result = &SuspensionResult{Scanned: len(overdue)}
	for _, o := range overdue {
		suspended, err := j.suspend(ctx, o)
		if err != nil {
			result.Failed++
			logging.Ctx(ctx).Error().Err(err).
				Str("academy_id", o.AcademyID.String()).
				Str("membership_id", o.MembershipID.String()).
				Msg("failed to suspend overdue membership")
			continue
		}
		if suspended {
			result.Suspended++
		}
	}

	metrics.RecordJobItems(OverdueSuspensionJob, "suspended", result.Suspended)
	metrics.RecordJobItems(OverdueSuspensionJob, "failed", result.Failed)
	logging.Info().
		Int("scanned", result.Scanned).
		Int("suspended", result.Suspended).
		Int("failed", result.Failed).
		Time("cutoff", cutoff).
		Msg("overdue suspension finished")
	return result, nil
}

// suspend re-reads the membership under lock so a payment that landed after
// the scan wins.
func (j *OverdueSuspension) suspend(ctx context.Context, o *models.OverdueMembership) (bool, error) {
	suspended := false
	err := j.txManager.WithinTx(ctx, func(r *repositories.TxRepos) error {
		m, err := r.Memberships.GetByIDForUpdate(ctx, o.AcademyID, o.MembershipID)
		if err != nil {
			return fmt.Errorf("failed to lock membership: %w", err)
		}
		if m.Status != models.MembershipActive || !m.NextBillingDate.Equal(o.NextBillingDate) {
			return nil
		}

		m.Status = models.MembershipPastDue
		if err := r.Memberships.Update(ctx, m); err != nil {
			return fmt.Errorf("failed to update membership: %w", err)
		}
		if err := writeStatusAudit(ctx, r, o.AcademyID, "memberships", m.ID, models.MembershipActive, models.MembershipPastDue); err != nil {
			return err
		}

		userSuspended, err := r.Users.SuspendIfActive(ctx, o.AcademyID, o.UserID)
		if err != nil {
			return fmt.Errorf("failed to suspend user: %w", err)
		}
		if userSuspended {
			if err := writeStatusAudit(ctx, r, o.AcademyID, "users", o.UserID, models.UserStatusActive, models.UserStatusSuspended); err != nil {
				return err
			}
		}
		suspended = true
		return nil
	})
	return suspended, err
}

func writeStatusAudit[S ~string](ctx context.Context, r *repositories.TxRepos, academyID uuid.UUID, table string, recordID uuid.UUID, from, to S) error {
	err := r.AuditLogs.Create(ctx, &models.AuditLog{
		ID:        uuid.New(),
		AcademyID: academyID,
		TableName: table,
		RecordID:  recordID.String(),
		Action:    models.ActionStatusChange,
		OldValues: models.JSONB{"status": string(from)},
		NewValues: models.JSONB{"status": string(to), "reason": "overdue"},
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
