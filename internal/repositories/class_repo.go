package repositories

import (
	"context"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type ClassRepository interface {
	Create(ctx context.Context, c *models.Class) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Class, error)
	Update(ctx context.Context, c *models.Class) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID) ([]*models.Class, error)
}

type classRepo struct {
	db DBTX
}

func NewClassRepository(db DBTX) ClassRepository {
	return &classRepo{db: db}
}

const classColumns = `id, academy_id, name, description, discipline, coach_id, capacity, level, created_at, updated_at`

func scanClass(row scanner) (*models.Class, error) {
	c := &models.Class{}
	err := row.Scan(&c.ID, &c.AcademyID, &c.Name, &c.Description, &c.Discipline, &c.CoachID, &c.Capacity, &c.Level,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *classRepo) Create(ctx context.Context, c *models.Class) error {
	query := `
		INSERT INTO classes (id, academy_id, name, description, discipline, coach_id, capacity, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.AcademyID, c.Name, c.Description, c.Discipline, c.CoachID, c.Capacity, c.Level)
	return err
}

func (r *classRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE academy_id = $1 AND id = $2`
	return scanClass(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *classRepo) Update(ctx context.Context, c *models.Class) error {
	query := `
		UPDATE classes
		SET name = $1, description = $2, discipline = $3, coach_id = $4, capacity = $5, level = $6, updated_at = NOW()
		WHERE academy_id = $7 AND id = $8
	`
	return affected(r.db.Exec(ctx, query, c.Name, c.Description, c.Discipline, c.CoachID, c.Capacity, c.Level, c.AcademyID, c.ID))
}

func (r *classRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM classes WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *classRepo) List(ctx context.Context, academyID uuid.UUID) ([]*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE academy_id = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, academyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

type ClassScheduleRepository interface {
	Create(ctx context.Context, s *models.ClassSchedule) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.ClassSchedule, error)
	Update(ctx context.Context, s *models.ClassSchedule) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, classID *uuid.UUID) ([]*models.ClassSchedule, error)
	ListActive(ctx context.Context, academyID uuid.UUID) ([]*models.ClassSchedule, error)
}

type classScheduleRepo struct {
	db DBTX
}

func NewClassScheduleRepository(db DBTX) ClassScheduleRepository {
	return &classScheduleRepo{db: db}
}

const scheduleColumns = `id, academy_id, class_id, weekday, start_time, duration_minutes, valid_from, valid_until, active, created_at, updated_at`

func scanClassSchedule(row scanner) (*models.ClassSchedule, error) {
	s := &models.ClassSchedule{}
	err := row.Scan(&s.ID, &s.AcademyID, &s.ClassID, &s.Weekday, &s.StartTime, &s.DurationMinutes, &s.ValidFrom,
		&s.ValidUntil, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *classScheduleRepo) Create(ctx context.Context, s *models.ClassSchedule) error {
	query := `
		INSERT INTO class_schedules (id, academy_id, class_id, weekday, start_time, duration_minutes, valid_from, valid_until, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.AcademyID, s.ClassID, s.Weekday, s.StartTime, s.DurationMinutes,
		s.ValidFrom, s.ValidUntil, s.Active)
	return err
}

func (r *classScheduleRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.ClassSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM class_schedules WHERE academy_id = $1 AND id = $2`
	return scanClassSchedule(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *classScheduleRepo) Update(ctx context.Context, s *models.ClassSchedule) error {
	query := `
		UPDATE class_schedules
		SET weekday = $1, start_time = $2, duration_minutes = $3, valid_from = $4, valid_until = $5, active = $6, updated_at = NOW()
		WHERE academy_id = $7 AND id = $8
	`
	return affected(r.db.Exec(ctx, query, s.Weekday, s.StartTime, s.DurationMinutes, s.ValidFrom, s.ValidUntil, s.Active,
		s.AcademyID, s.ID))
}

func (r *classScheduleRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM class_schedules WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *classScheduleRepo) List(ctx context.Context, academyID uuid.UUID, classID *uuid.UUID) ([]*models.ClassSchedule, error) {
	args := newArgList(academyID)
	query := `SELECT ` + scheduleColumns + ` FROM class_schedules WHERE academy_id = $1`
	if classID != nil {
		query += " AND class_id = " + args.add(*classID)
	}
	query += " ORDER BY weekday, start_time"
	return r.query(ctx, query, args.args...)
}

func (r *classScheduleRepo) ListActive(ctx context.Context, academyID uuid.UUID) ([]*models.ClassSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM class_schedules WHERE academy_id = $1 AND active = TRUE ORDER BY weekday, start_time`
	return r.query(ctx, query, academyID)
}

func (r *classScheduleRepo) query(ctx context.Context, query string, args ...any) ([]*models.ClassSchedule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.ClassSchedule
	for rows.Next() {
		s, err := scanClassSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

type ClassInstanceRepository interface {
	Create(ctx context.Context, inst *models.ClassInstance) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error)
	List(ctx context.Context, academyID uuid.UUID, filters *models.InstanceFilters) ([]*models.ClassInstance, error)
	UpdateStatus(ctx context.Context, academyID, id uuid.UUID, status models.InstanceStatus) error
	ExistsForScheduleDate(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error)
	// InsertFromSchedule reports false when (schedule_id, date) already exists.
	InsertFromSchedule(ctx context.Context, inst *models.ClassInstance) (bool, error)
	CountScheduledBetween(ctx context.Context, academyID uuid.UUID, from, to time.Time) (int, error)
}

type classInstanceRepo struct {
	db DBTX
}

func NewClassInstanceRepository(db DBTX) ClassInstanceRepository {
	return &classInstanceRepo{db: db}
}

const instanceColumns = `i.id, i.academy_id, i.class_id, i.schedule_id, i.date, i.starts_at, i.ends_at, i.status, c.name, i.created_at`

func scanClassInstance(row scanner) (*models.ClassInstance, error) {
	inst := &models.ClassInstance{}
	err := row.Scan(&inst.ID, &inst.AcademyID, &inst.ClassID, &inst.ScheduleID, &inst.Date, &inst.StartsAt,
		&inst.EndsAt, &inst.Status, &inst.ClassName, &inst.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *classInstanceRepo) Create(ctx context.Context, inst *models.ClassInstance) error {
	query := `
		INSERT INTO class_instances (id, academy_id, class_id, schedule_id, date, starts_at, ends_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, inst.ID, inst.AcademyID, inst.ClassID, inst.ScheduleID, inst.Date, inst.StartsAt,
		inst.EndsAt, inst.Status)
	return err
}

func (r *classInstanceRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM class_instances i JOIN classes c ON c.id = i.class_id
		WHERE i.academy_id = $1 AND i.id = $2
	`
	return scanClassInstance(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *classInstanceRepo) List(ctx context.Context, academyID uuid.UUID, filters *models.InstanceFilters) ([]*models.ClassInstance, error) {
	args := newArgList(academyID, filters.From, filters.To)
	query := `
		SELECT ` + instanceColumns + `
		FROM class_instances i JOIN classes c ON c.id = i.class_id
		WHERE i.academy_id = $1 AND i.date BETWEEN $2 AND $3
	`
	if filters.ClassID != nil {
		query += " AND i.class_id = " + args.add(*filters.ClassID)
	}
	if filters.Status != nil {
		query += " AND i.status = " + args.add(*filters.Status)
	}
	query += " ORDER BY i.starts_at"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []*models.ClassInstance
	for rows.Next() {
		inst, err := scanClassInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

func (r *classInstanceRepo) UpdateStatus(ctx context.Context, academyID, id uuid.UUID, status models.InstanceStatus) error {
	return affected(r.db.Exec(ctx, `UPDATE class_instances SET status = $1 WHERE academy_id = $2 AND id = $3`, status, academyID, id))
}

func (r *classInstanceRepo) ExistsForScheduleDate(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM class_instances WHERE schedule_id = $1 AND date = $2)`
	err := r.db.QueryRow(ctx, query, scheduleID, date).Scan(&exists)
	return exists, err
}

func (r *classInstanceRepo) InsertFromSchedule(ctx context.Context, inst *models.ClassInstance) (bool, error) {
	query := `
		INSERT INTO class_instances (id, academy_id, class_id, schedule_id, date, starts_at, ends_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (schedule_id, date) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, inst.ID, inst.AcademyID, inst.ClassID, inst.ScheduleID, inst.Date,
		inst.StartsAt, inst.EndsAt, inst.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *classInstanceRepo) CountScheduledBetween(ctx context.Context, academyID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM class_instances
		WHERE academy_id = $1 AND status = 'SCHEDULED' AND starts_at >= $2 AND starts_at < $3
	`
	err := r.db.QueryRow(ctx, query, academyID, from, to).Scan(&count)
	return count, err
}
