package repositories

import (
	"context"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type AttendanceRepository interface {
	Create(ctx context.Context, a *models.Attendance) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Attendance, error)
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	ListForInstance(ctx context.Context, academyID, instanceID uuid.UUID) ([]*models.Attendance, error)
	ListForUser(ctx context.Context, academyID, userID uuid.UUID, limit, offset int) ([]*models.Attendance, error)
	CountForUserSince(ctx context.Context, academyID, userID uuid.UUID, since time.Time) (int, error)
	Stats(ctx context.Context, academyID, userID uuid.UUID, since time.Time) (*models.AttendanceStats, error)
	CountSince(ctx context.Context, academyID uuid.UUID, since time.Time) (int, error)
}

type attendanceRepo struct {
	db DBTX
}

func NewAttendanceRepository(db DBTX) AttendanceRepository {
	return &attendanceRepo{db: db}
}

const attendanceColumns = `id, academy_id, instance_id, user_id, checked_in_at, method, recorded_by`

func scanAttendance(row scanner) (*models.Attendance, error) {
	a := &models.Attendance{}
	err := row.Scan(&a.ID, &a.AcademyID, &a.InstanceID, &a.UserID, &a.CheckedInAt, &a.Method, &a.RecordedBy)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create fails with a unique violation when the user already checked in.
func (r *attendanceRepo) Create(ctx context.Context, a *models.Attendance) error {
	query := `
		INSERT INTO attendances (id, academy_id, instance_id, user_id, checked_in_at, method, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.AcademyID, a.InstanceID, a.UserID, a.CheckedInAt, a.Method, a.RecordedBy)
	return err
}

func (r *attendanceRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE academy_id = $1 AND id = $2`
	return scanAttendance(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *attendanceRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM attendances WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *attendanceRepo) ListForInstance(ctx context.Context, academyID, instanceID uuid.UUID) ([]*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE academy_id = $1 AND instance_id = $2 ORDER BY checked_in_at`
	return r.query(ctx, query, academyID, instanceID)
}

func (r *attendanceRepo) ListForUser(ctx context.Context, academyID, userID uuid.UUID, limit, offset int) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + ` FROM attendances
		WHERE academy_id = $1 AND user_id = $2
		ORDER BY checked_in_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.query(ctx, query, academyID, userID, limit, offset)
}

func (r *attendanceRepo) query(ctx context.Context, query string, args ...any) ([]*models.Attendance, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendances []*models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		attendances = append(attendances, a)
	}
	return attendances, rows.Err()
}

func (r *attendanceRepo) CountForUserSince(ctx context.Context, academyID, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendances WHERE academy_id = $1 AND user_id = $2 AND checked_in_at >= $3`
	err := r.db.QueryRow(ctx, query, academyID, userID, since).Scan(&count)
	return count, err
}

func (r *attendanceRepo) Stats(ctx context.Context, academyID, userID uuid.UUID, since time.Time) (*models.AttendanceStats, error) {
	stats := &models.AttendanceStats{UserID: userID}
	query := `
		SELECT COUNT(*) FILTER (WHERE checked_in_at >= $3), COUNT(*), MAX(checked_in_at)
		FROM attendances
		WHERE academy_id = $1 AND user_id = $2
	`
	err := r.db.QueryRow(ctx, query, academyID, userID, since).Scan(&stats.Last30Days, &stats.Total, &stats.LastCheckIn)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *attendanceRepo) CountSince(ctx context.Context, academyID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendances WHERE academy_id = $1 AND checked_in_at >= $2`
	err := r.db.QueryRow(ctx, query, academyID, since).Scan(&count)
	return count, err
}
