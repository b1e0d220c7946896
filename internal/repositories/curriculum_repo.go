package repositories

import (
	"context"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type BeltRepository interface {
	Create(ctx context.Context, b *models.Belt) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Belt, error)
	Update(ctx context.Context, b *models.Belt) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, discipline string) ([]*models.Belt, error)
	// Next returns the lowest ranked belt above rank in the same discipline,
	// or pgx.ErrNoRows at the top of the ladder.
	Next(ctx context.Context, academyID uuid.UUID, discipline string, rank int) (*models.Belt, error)
	// First returns the lowest ranked belt of the discipline.
	First(ctx context.Context, academyID uuid.UUID, discipline string) (*models.Belt, error)
}

type beltRepo struct {
	db DBTX
}

func NewBeltRepository(db DBTX) BeltRepository {
	return &beltRepo{db: db}
}

const beltColumns = `id, academy_id, discipline, name, color, rank_order, max_stripes, min_classes, created_at`

func scanBelt(row scanner) (*models.Belt, error) {
	b := &models.Belt{}
	err := row.Scan(&b.ID, &b.AcademyID, &b.Discipline, &b.Name, &b.Color, &b.RankOrder, &b.MaxStripes,
		&b.MinClasses, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *beltRepo) Create(ctx context.Context, b *models.Belt) error {
	query := `
		INSERT INTO belts (id, academy_id, discipline, name, color, rank_order, max_stripes, min_classes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, b.ID, b.AcademyID, b.Discipline, b.Name, b.Color, b.RankOrder, b.MaxStripes, b.MinClasses)
	return err
}

func (r *beltRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Belt, error) {
	query := `SELECT ` + beltColumns + ` FROM belts WHERE academy_id = $1 AND id = $2`
	return scanBelt(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *beltRepo) Update(ctx context.Context, b *models.Belt) error {
	query := `
		UPDATE belts
		SET discipline = $1, name = $2, color = $3, rank_order = $4, max_stripes = $5, min_classes = $6
		WHERE academy_id = $7 AND id = $8
	`
	return affected(r.db.Exec(ctx, query, b.Discipline, b.Name, b.Color, b.RankOrder, b.MaxStripes, b.MinClasses, b.AcademyID, b.ID))
}

func (r *beltRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM belts WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *beltRepo) List(ctx context.Context, academyID uuid.UUID, discipline string) ([]*models.Belt, error) {
	args := newArgList(academyID)
	query := `SELECT ` + beltColumns + ` FROM belts WHERE academy_id = $1`
	if discipline != "" {
		query += " AND discipline = " + args.add(discipline)
	}
	query += " ORDER BY discipline, rank_order"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var belts []*models.Belt
	for rows.Next() {
		b, err := scanBelt(rows)
		if err != nil {
			return nil, err
		}
		belts = append(belts, b)
	}
	return belts, rows.Err()
}

func (r *beltRepo) Next(ctx context.Context, academyID uuid.UUID, discipline string, rank int) (*models.Belt, error) {
	query := `
		SELECT ` + beltColumns + ` FROM belts
		WHERE academy_id = $1 AND discipline = $2 AND rank_order > $3
		ORDER BY rank_order
		LIMIT 1
	`
	return scanBelt(r.db.QueryRow(ctx, query, academyID, discipline, rank))
}

func (r *beltRepo) First(ctx context.Context, academyID uuid.UUID, discipline string) (*models.Belt, error) {
	query := `
		SELECT ` + beltColumns + ` FROM belts
		WHERE academy_id = $1 AND discipline = $2
		ORDER BY rank_order
		LIMIT 1
	`
	return scanBelt(r.db.QueryRow(ctx, query, academyID, discipline))
}

type CurriculumRepository interface {
	Create(ctx context.Context, item *models.CurriculumItem) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.CurriculumItem, error)
	Update(ctx context.Context, item *models.CurriculumItem) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	ListByBelt(ctx context.Context, academyID, beltID uuid.UUID) ([]*models.CurriculumItem, error)
}

type curriculumRepo struct {
	db DBTX
}

func NewCurriculumRepository(db DBTX) CurriculumRepository {
	return &curriculumRepo{db: db}
}

const curriculumColumns = `id, academy_id, belt_id, title, description, content_id, position, created_at`

func scanCurriculumItem(row scanner) (*models.CurriculumItem, error) {
	item := &models.CurriculumItem{}
	err := row.Scan(&item.ID, &item.AcademyID, &item.BeltID, &item.Title, &item.Description, &item.ContentID,
		&item.Position, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *curriculumRepo) Create(ctx context.Context, item *models.CurriculumItem) error {
	query := `
		INSERT INTO curriculum_items (id, academy_id, belt_id, title, description, content_id, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.AcademyID, item.BeltID, item.Title, item.Description, item.ContentID, item.Position)
	return err
}

func (r *curriculumRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.CurriculumItem, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curriculum_items WHERE academy_id = $1 AND id = $2`
	return scanCurriculumItem(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *curriculumRepo) Update(ctx context.Context, item *models.CurriculumItem) error {
	query := `
		UPDATE curriculum_items
		SET belt_id = $1, title = $2, description = $3, content_id = $4, position = $5
		WHERE academy_id = $6 AND id = $7
	`
	return affected(r.db.Exec(ctx, query, item.BeltID, item.Title, item.Description, item.ContentID, item.Position, item.AcademyID, item.ID))
}

func (r *curriculumRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM curriculum_items WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *curriculumRepo) ListByBelt(ctx context.Context, academyID, beltID uuid.UUID) ([]*models.CurriculumItem, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curriculum_items WHERE academy_id = $1 AND belt_id = $2 ORDER BY position, title`
	rows, err := r.db.Query(ctx, query, academyID, beltID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.CurriculumItem
	for rows.Next() {
		item, err := scanCurriculumItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type PromotionRepository interface {
	Create(ctx context.Context, p *models.Promotion) error
	// Latest returns the most recent promotion of the user, or pgx.ErrNoRows.
	Latest(ctx context.Context, academyID, userID uuid.UUID) (*models.Promotion, error)
	ListForUser(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Promotion, error)
}

type promotionRepo struct {
	db DBTX
}

func NewPromotionRepository(db DBTX) PromotionRepository {
	return &promotionRepo{db: db}
}

const promotionColumns = `id, academy_id, user_id, belt_id, stripes, promoted_by, promoted_at, notes`

func scanPromotion(row scanner) (*models.Promotion, error) {
	p := &models.Promotion{}
	err := row.Scan(&p.ID, &p.AcademyID, &p.UserID, &p.BeltID, &p.Stripes, &p.PromotedBy, &p.PromotedAt, &p.Notes)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *promotionRepo) Create(ctx context.Context, p *models.Promotion) error {
	query := `
		INSERT INTO promotions (id, academy_id, user_id, belt_id, stripes, promoted_by, promoted_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.AcademyID, p.UserID, p.BeltID, p.Stripes, p.PromotedBy, p.PromotedAt, p.Notes)
	return err
}

func (r *promotionRepo) Latest(ctx context.Context, academyID, userID uuid.UUID) (*models.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + ` FROM promotions
		WHERE academy_id = $1 AND user_id = $2
		ORDER BY promoted_at DESC
		LIMIT 1
	`
	return scanPromotion(r.db.QueryRow(ctx, query, academyID, userID))
}

func (r *promotionRepo) ListForUser(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE academy_id = $1 AND user_id = $2 ORDER BY promoted_at DESC`
	rows, err := r.db.Query(ctx, query, academyID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []*models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}
	return promotions, rows.Err()
}
