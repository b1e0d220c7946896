package repositories

import (
	"context"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type AcademyRepository interface {
	Create(ctx context.Context, academy *models.Academy) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Academy, error)
	GetBySlug(ctx context.Context, slug string) (*models.Academy, error)
	Update(ctx context.Context, academy *models.Academy) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AcademyStatus) error
	ListByStatus(ctx context.Context, statuses ...models.AcademyStatus) ([]*models.Academy, error)
	// SuspendExpiredTrials moves TRIAL academies whose trial ended before now
	// to SUSPENDED and returns how many changed.
	SuspendExpiredTrials(ctx context.Context, now time.Time) (int64, error)
}

type academyRepo struct {
	db DBTX
}

func NewAcademyRepository(db DBTX) AcademyRepository {
	return &academyRepo{db: db}
}

const academyColumns = `id, name, slug, kind, status, trial_ends_at, timezone, currency, created_at, updated_at`

func scanAcademy(row scanner) (*models.Academy, error) {
	academy := &models.Academy{}
	err := row.Scan(&academy.ID, &academy.Name, &academy.Slug, &academy.Kind, &academy.Status,
		&academy.TrialEndsAt, &academy.Timezone, &academy.Currency, &academy.CreatedAt, &academy.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return academy, nil
}

func (r *academyRepo) Create(ctx context.Context, academy *models.Academy) error {
	query := `
		INSERT INTO academies (id, name, slug, kind, status, trial_ends_at, timezone, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, academy.ID, academy.Name, academy.Slug, academy.Kind, academy.Status,
		academy.TrialEndsAt, academy.Timezone, academy.Currency)
	return err
}

func (r *academyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Academy, error) {
	query := `SELECT ` + academyColumns + ` FROM academies WHERE id = $1`
	return scanAcademy(r.db.QueryRow(ctx, query, id))
}

func (r *academyRepo) GetBySlug(ctx context.Context, slug string) (*models.Academy, error) {
	query := `SELECT ` + academyColumns + ` FROM academies WHERE slug = $1`
	return scanAcademy(r.db.QueryRow(ctx, query, slug))
}

func (r *academyRepo) Update(ctx context.Context, academy *models.Academy) error {
	query := `
		UPDATE academies
		SET name = $1, timezone = $2, currency = $3, updated_at = NOW()
		WHERE id = $4
	`
	return affected(r.db.Exec(ctx, query, academy.Name, academy.Timezone, academy.Currency, academy.ID))
}

func (r *academyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AcademyStatus) error {
	query := `UPDATE academies SET status = $1, updated_at = NOW() WHERE id = $2`
	return affected(r.db.Exec(ctx, query, status, id))
}

func (r *academyRepo) ListByStatus(ctx context.Context, statuses ...models.AcademyStatus) ([]*models.Academy, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	query := `SELECT ` + academyColumns + ` FROM academies WHERE status = ANY($1) ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var academies []*models.Academy
	for rows.Next() {
		academy, err := scanAcademy(rows)
		if err != nil {
			return nil, err
		}
		academies = append(academies, academy)
	}
	return academies, rows.Err()
}

func (r *academyRepo) SuspendExpiredTrials(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE academies
		SET status = 'SUSPENDED', updated_at = NOW()
		WHERE status = 'TRIAL' AND trial_ends_at IS NOT NULL AND trial_ends_at < $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type BrandingRepository interface {
	// Get returns the stored branding or pgx.ErrNoRows when none was saved.
	Get(ctx context.Context, academyID uuid.UUID) (*models.Branding, error)
	Upsert(ctx context.Context, branding *models.Branding) error
}

type brandingRepo struct {
	db DBTX
}

func NewBrandingRepository(db DBTX) BrandingRepository {
	return &brandingRepo{db: db}
}

func (r *brandingRepo) Get(ctx context.Context, academyID uuid.UUID) (*models.Branding, error) {
	b := &models.Branding{}
	query := `
		SELECT academy_id, primary_color, secondary_color, logo_object, welcome_message, updated_at
		FROM academy_branding
		WHERE academy_id = $1
	`
	err := r.db.QueryRow(ctx, query, academyID).Scan(&b.AcademyID, &b.PrimaryColor, &b.SecondaryColor,
		&b.LogoObject, &b.WelcomeMessage, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *brandingRepo) Upsert(ctx context.Context, b *models.Branding) error {
	query := `
		INSERT INTO academy_branding (academy_id, primary_color, secondary_color, logo_object, welcome_message, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (academy_id) DO UPDATE
		SET primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			logo_object = EXCLUDED.logo_object,
			welcome_message = EXCLUDED.welcome_message,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, b.AcademyID, b.PrimaryColor, b.SecondaryColor, b.LogoObject, b.WelcomeMessage)
	return err
}
