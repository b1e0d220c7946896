package repositories

import (
	"context"
	"fmt"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error)
	Update(ctx context.Context, m *models.Membership) error
	List(ctx context.Context, academyID uuid.UUID, filters *models.MembershipFilters) ([]*models.Membership, error)
	// FindLiveByUser returns the user's TRIAL/ACTIVE/PAST_DUE membership, or
	// pgx.ErrNoRows.
	FindLiveByUser(ctx context.Context, academyID, userID uuid.UUID) (*models.Membership, error)
	HasOtherActive(ctx context.Context, academyID, userID, excludeID uuid.UUID) (bool, error)
	// ListOverdue scans every academy for ACTIVE memberships billed before
	// cutoff with no PAID payment covering the plan price on or after their
	// billing date.
	ListOverdue(ctx context.Context, cutoff time.Time) ([]*models.OverdueMembership, error)
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context, academyID uuid.UUID) (map[models.MembershipStatus]int, error)
}

type membershipRepo struct {
	db DBTX
}

func NewMembershipRepository(db DBTX) MembershipRepository {
	return &membershipRepo{db: db}
}

const membershipColumns = `id, academy_id, user_id, plan_id, status, start_date, next_billing_date, trial_ends_at, cancelled_at, created_at, updated_at`

func scanMembership(row scanner) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(&m.ID, &m.AcademyID, &m.UserID, &m.PlanID, &m.Status, &m.StartDate, &m.NextBillingDate,
		&m.TrialEndsAt, &m.CancelledAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *membershipRepo) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO memberships (id, academy_id, user_id, plan_id, status, start_date, next_billing_date, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.AcademyID, m.UserID, m.PlanID, m.Status, m.StartDate,
		m.NextBillingDate, m.TrialEndsAt)
	return err
}

func (r *membershipRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE academy_id = $1 AND id = $2`
	return scanMembership(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *membershipRepo) GetByIDForUpdate(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE academy_id = $1 AND id = $2 FOR UPDATE`
	return scanMembership(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *membershipRepo) Update(ctx context.Context, m *models.Membership) error {
	query := `
		UPDATE memberships
		SET status = $1, next_billing_date = $2, trial_ends_at = $3, cancelled_at = $4, updated_at = NOW()
		WHERE academy_id = $5 AND id = $6
	`
	return affected(r.db.Exec(ctx, query, m.Status, m.NextBillingDate, m.TrialEndsAt, m.CancelledAt, m.AcademyID, m.ID))
}

func (r *membershipRepo) List(ctx context.Context, academyID uuid.UUID, filters *models.MembershipFilters) ([]*models.Membership, error) {
	args := newArgList(academyID)
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE academy_id = $1`
	if filters.Status != nil {
		query += " AND status = " + args.add(*filters.Status)
	}
	if filters.UserID != nil {
		query += " AND user_id = " + args.add(*filters.UserID)
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", args.add(filters.Limit), args.add(filters.Offset))
	}

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepo) FindLiveByUser(ctx context.Context, academyID, userID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + ` FROM memberships
		WHERE academy_id = $1 AND user_id = $2 AND status IN ('TRIAL', 'ACTIVE', 'PAST_DUE')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanMembership(r.db.QueryRow(ctx, query, academyID, userID))
}

func (r *membershipRepo) HasOtherActive(ctx context.Context, academyID, userID, excludeID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM memberships
			WHERE academy_id = $1 AND user_id = $2 AND id <> $3 AND status = 'ACTIVE'
		)
	`
	err := r.db.QueryRow(ctx, query, academyID, userID, excludeID).Scan(&exists)
	return exists, err
}

func (r *membershipRepo) ListOverdue(ctx context.Context, cutoff time.Time) ([]*models.OverdueMembership, error) {
	query := `
		SELECT m.id, m.academy_id, m.user_id, u.status, m.next_billing_date
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN plans pl ON pl.id = m.plan_id
		WHERE m.status = 'ACTIVE'
		  AND m.next_billing_date < $1
		  AND NOT EXISTS (
			SELECT 1 FROM payments p
			WHERE p.membership_id = m.id AND p.status = 'PAID' AND p.paid_at >= m.next_billing_date
			  AND p.amount >= pl.price
		  )
		ORDER BY m.next_billing_date
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []*models.OverdueMembership
	for rows.Next() {
		o := &models.OverdueMembership{}
		if err := rows.Scan(&o.MembershipID, &o.AcademyID, &o.UserID, &o.UserStatus, &o.NextBillingDate); err != nil {
			return nil, err
		}
		overdue = append(overdue, o)
	}
	return overdue, rows.Err()
}

func (r *membershipRepo) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE memberships
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'TRIAL' AND trial_ends_at IS NOT NULL AND trial_ends_at < $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *membershipRepo) CountByStatus(ctx context.Context, academyID uuid.UUID) (map[models.MembershipStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM memberships WHERE academy_id = $1 GROUP BY status`
	rows, err := r.db.Query(ctx, query, academyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.MembershipStatus]int)
	for rows.Next() {
		var status models.MembershipStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
