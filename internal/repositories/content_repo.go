package repositories

import (
	"context"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type ChannelRepository interface {
	Create(ctx context.Context, ch *models.Channel) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Channel, error)
	Update(ctx context.Context, ch *models.Channel) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, visibility *models.ChannelVisibility) ([]*models.Channel, error)
}

type channelRepo struct {
	db DBTX
}

func NewChannelRepository(db DBTX) ChannelRepository {
	return &channelRepo{db: db}
}

const channelColumns = `id, academy_id, name, description, visibility, created_at`

func scanChannel(row scanner) (*models.Channel, error) {
	ch := &models.Channel{}
	if err := row.Scan(&ch.ID, &ch.AcademyID, &ch.Name, &ch.Description, &ch.Visibility, &ch.CreatedAt); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *channelRepo) Create(ctx context.Context, ch *models.Channel) error {
	query := `
		INSERT INTO channels (id, academy_id, name, description, visibility, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, ch.ID, ch.AcademyID, ch.Name, ch.Description, ch.Visibility)
	return err
}

func (r *channelRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE academy_id = $1 AND id = $2`
	return scanChannel(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *channelRepo) Update(ctx context.Context, ch *models.Channel) error {
	query := `UPDATE channels SET name = $1, description = $2, visibility = $3 WHERE academy_id = $4 AND id = $5`
	return affected(r.db.Exec(ctx, query, ch.Name, ch.Description, ch.Visibility, ch.AcademyID, ch.ID))
}

func (r *channelRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM channels WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *channelRepo) List(ctx context.Context, academyID uuid.UUID, visibility *models.ChannelVisibility) ([]*models.Channel, error) {
	args := newArgList(academyID)
	query := `SELECT ` + channelColumns + ` FROM channels WHERE academy_id = $1`
	if visibility != nil {
		query += " AND visibility = " + args.add(*visibility)
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

type ContentRepository interface {
	Create(ctx context.Context, c *models.Content) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Content, error)
	Update(ctx context.Context, c *models.Content) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, filters *models.ContentFilters) ([]*models.Content, error)
}

type contentRepo struct {
	db DBTX
}

func NewContentRepository(db DBTX) ContentRepository {
	return &contentRepo{db: db}
}

const contentColumns = `c.id, c.academy_id, c.channel_id, c.title, c.description, c.kind, c.url, c.object_key, c.belt_id, c.published, c.created_at, c.updated_at`

func scanContent(row scanner) (*models.Content, error) {
	c := &models.Content{}
	err := row.Scan(&c.ID, &c.AcademyID, &c.ChannelID, &c.Title, &c.Description, &c.Kind, &c.URL, &c.ObjectKey,
		&c.BeltID, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contentRepo) Create(ctx context.Context, c *models.Content) error {
	query := `
		INSERT INTO contents (id, academy_id, channel_id, title, description, kind, url, object_key, belt_id, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.AcademyID, c.ChannelID, c.Title, c.Description, c.Kind, c.URL, c.ObjectKey,
		c.BeltID, c.Published)
	return err
}

func (r *contentRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents c WHERE c.academy_id = $1 AND c.id = $2`
	return scanContent(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *contentRepo) Update(ctx context.Context, c *models.Content) error {
	query := `
		UPDATE contents
		SET channel_id = $1, title = $2, description = $3, kind = $4, url = $5, object_key = $6, belt_id = $7,
			published = $8, updated_at = NOW()
		WHERE academy_id = $9 AND id = $10
	`
	return affected(r.db.Exec(ctx, query, c.ChannelID, c.Title, c.Description, c.Kind, c.URL, c.ObjectKey, c.BeltID,
		c.Published, c.AcademyID, c.ID))
}

func (r *contentRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM contents WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *contentRepo) List(ctx context.Context, academyID uuid.UUID, filters *models.ContentFilters) ([]*models.Content, error) {
	args := newArgList(academyID)
	query := `SELECT ` + contentColumns + ` FROM contents c JOIN channels ch ON ch.id = c.channel_id WHERE c.academy_id = $1`
	if filters.ChannelID != nil {
		query += " AND c.channel_id = " + args.add(*filters.ChannelID)
	}
	if filters.BeltID != nil {
		query += " AND c.belt_id = " + args.add(*filters.BeltID)
	}
	if filters.PublishedOnly || filters.StudentView {
		query += " AND c.published = TRUE"
	}
	if filters.StudentView {
		query += " AND ch.visibility = 'ALL'"
	}
	query += " ORDER BY c.created_at DESC"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}
