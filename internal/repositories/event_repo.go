package repositories

import (
	"context"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, from *time.Time) ([]*models.Event, error)
	// Register inserts the registration only while the event has room and
	// reports false when it is full.
	Register(ctx context.Context, reg *models.EventRegistration) (bool, error)
	IsRegistered(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	Unregister(ctx context.Context, academyID, eventID, userID uuid.UUID) (bool, error)
	ListRegistrations(ctx context.Context, academyID, eventID uuid.UUID) ([]*models.EventRegistration, error)
}

type eventRepo struct {
	db DBTX
}

func NewEventRepository(db DBTX) EventRepository {
	return &eventRepo{db: db}
}

const eventColumns = `e.id, e.academy_id, e.title, e.description, e.location, e.starts_at, e.ends_at, e.price, e.capacity,
	(SELECT COUNT(*) FROM event_registrations r WHERE r.event_id = e.id), e.created_at, e.updated_at`

func scanEvent(row scanner) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(&e.ID, &e.AcademyID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Price,
		&e.Capacity, &e.Registered, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepo) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (id, academy_id, title, description, location, starts_at, ends_at, price, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.AcademyID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Price, e.Capacity)
	return err
}

func (r *eventRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.academy_id = $1 AND e.id = $2`
	return scanEvent(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *eventRepo) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5, price = $6, capacity = $7, updated_at = NOW()
		WHERE academy_id = $8 AND id = $9
	`
	return affected(r.db.Exec(ctx, query, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Price, e.Capacity, e.AcademyID, e.ID))
}

func (r *eventRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM events WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *eventRepo) List(ctx context.Context, academyID uuid.UUID, from *time.Time) ([]*models.Event, error) {
	args := newArgList(academyID)
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.academy_id = $1`
	if from != nil {
		query += " AND e.ends_at >= " + args.add(*from)
	}
	query += " ORDER BY e.starts_at"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) Register(ctx context.Context, reg *models.EventRegistration) (bool, error) {
	query := `
		INSERT INTO event_registrations (id, academy_id, event_id, user_id, registered_at)
		SELECT $1, $2, $3, $4, NOW()
		FROM events e
		WHERE e.id = $3 AND e.academy_id = $2
		  AND (e.capacity IS NULL OR (SELECT COUNT(*) FROM event_registrations r WHERE r.event_id = e.id) < e.capacity)
	`
	tag, err := r.db.Exec(ctx, query, reg.ID, reg.AcademyID, reg.EventID, reg.UserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *eventRepo) IsRegistered(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`
	err := r.db.QueryRow(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (r *eventRepo) Unregister(ctx context.Context, academyID, eventID, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM event_registrations WHERE academy_id = $1 AND event_id = $2 AND user_id = $3`
	tag, err := r.db.Exec(ctx, query, academyID, eventID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *eventRepo) ListRegistrations(ctx context.Context, academyID, eventID uuid.UUID) ([]*models.EventRegistration, error) {
	query := `
		SELECT id, academy_id, event_id, user_id, registered_at
		FROM event_registrations
		WHERE academy_id = $1 AND event_id = $2
		ORDER BY registered_at
	`
	rows, err := r.db.Query(ctx, query, academyID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*models.EventRegistration
	for rows.Next() {
		reg := &models.EventRegistration{}
		if err := rows.Scan(&reg.ID, &reg.AcademyID, &reg.EventID, &reg.UserID, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
