package repositories

import (
	"context"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.Plan, error)
	CountLiveMemberships(ctx context.Context, academyID, planID uuid.UUID) (int, error)
}

type planRepo struct {
	db DBTX
}

func NewPlanRepository(db DBTX) PlanRepository {
	return &planRepo{db: db}
}

const planColumns = `id, academy_id, name, description, price, currency, billing_interval, classes_per_week, trial_days, active, created_at, updated_at`

func scanPlan(row scanner) (*models.Plan, error) {
	p := &models.Plan{}
	err := row.Scan(&p.ID, &p.AcademyID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Interval,
		&p.ClassesPerWeek, &p.TrialDays, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *planRepo) Create(ctx context.Context, p *models.Plan) error {
	query := `
		INSERT INTO plans (id, academy_id, name, description, price, currency, billing_interval, classes_per_week, trial_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.AcademyID, p.Name, p.Description, p.Price, p.Currency, p.Interval,
		p.ClassesPerWeek, p.TrialDays, p.Active)
	return err
}

func (r *planRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE academy_id = $1 AND id = $2`
	return scanPlan(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *planRepo) Update(ctx context.Context, p *models.Plan) error {
	query := `
		UPDATE plans
		SET name = $1, description = $2, price = $3, currency = $4, billing_interval = $5,
			classes_per_week = $6, trial_days = $7, active = $8, updated_at = NOW()
		WHERE academy_id = $9 AND id = $10
	`
	return affected(r.db.Exec(ctx, query, p.Name, p.Description, p.Price, p.Currency, p.Interval, p.ClassesPerWeek,
		p.TrialDays, p.Active, p.AcademyID, p.ID))
}

func (r *planRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	query := `DELETE FROM plans WHERE academy_id = $1 AND id = $2`
	return affected(r.db.Exec(ctx, query, academyID, id))
}

func (r *planRepo) List(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE academy_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY price, name`

	rows, err := r.db.Query(ctx, query, academyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *planRepo) CountLiveMemberships(ctx context.Context, academyID, planID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM memberships
		WHERE academy_id = $1 AND plan_id = $2 AND status IN ('TRIAL', 'ACTIVE', 'PAST_DUE')
	`
	err := r.db.QueryRow(ctx, query, academyID, planID).Scan(&count)
	return count, err
}
