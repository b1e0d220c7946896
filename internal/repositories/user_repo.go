package repositories

import (
	"context"
	"fmt"
	"strings"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, academyID uuid.UUID, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, academyID, id uuid.UUID, status models.UserStatus) error
	UpdatePassword(ctx context.Context, academyID, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, academyID uuid.UUID, filters *models.UserFilters) ([]*models.User, error)
	// SuspendIfActive flips ACTIVE to SUSPENDED and reports whether a row changed.
	SuspendIfActive(ctx context.Context, academyID, id uuid.UUID) (bool, error)
	// ReactivateIfSuspended flips SUSPENDED to ACTIVE and reports whether a row changed.
	ReactivateIfSuspended(ctx context.Context, academyID, id uuid.UUID) (bool, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, academy_id, email, password_hash, first_name, last_name, role, status, phone, birth_date, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.AcademyID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Role, &user.Status, &user.Phone, &user.BirthDate, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, academy_id, email, password_hash, first_name, last_name, role, status, phone, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.AcademyID, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.Role, user.Status, user.Phone, user.BirthDate)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE academy_id = $1 AND id = $2`
	return scanUser(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, academyID uuid.UUID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE academy_id = $1 AND email = $2`
	return scanUser(r.db.QueryRow(ctx, query, academyID, strings.ToLower(email)))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, birth_date = $4, updated_at = NOW()
		WHERE academy_id = $5 AND id = $6
	`
	return affected(r.db.Exec(ctx, query, user.FirstName, user.LastName, user.Phone, user.BirthDate, user.AcademyID, user.ID))
}

func (r *userRepo) UpdateStatus(ctx context.Context, academyID, id uuid.UUID, status models.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE academy_id = $2 AND id = $3`
	return affected(r.db.Exec(ctx, query, status, academyID, id))
}

func (r *userRepo) UpdatePassword(ctx context.Context, academyID, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE academy_id = $2 AND id = $3`
	return affected(r.db.Exec(ctx, query, passwordHash, academyID, id))
}

func (r *userRepo) List(ctx context.Context, academyID uuid.UUID, filters *models.UserFilters) ([]*models.User, error) {
	args := newArgList(academyID)
	var where []string
	if filters.Role != nil {
		where = append(where, "role = "+args.add(*filters.Role))
	}
	if filters.Status != nil {
		where = append(where, "status = "+args.add(*filters.Status))
	}
	if filters.Search != "" {
		p := args.add("%" + filters.Search + "%")
		where = append(where, fmt.Sprintf("(first_name ILIKE %s OR last_name ILIKE %s OR email ILIKE %s)", p, p, p))
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE academy_id = $1`
	for _, clause := range where {
		query += " AND " + clause
	}
	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT %s OFFSET %s", args.add(filters.Limit), args.add(filters.Offset))

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) SuspendIfActive(ctx context.Context, academyID, id uuid.UUID) (bool, error) {
	query := `UPDATE users SET status = 'SUSPENDED', updated_at = NOW() WHERE academy_id = $1 AND id = $2 AND status = 'ACTIVE'`
	tag, err := r.db.Exec(ctx, query, academyID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepo) ReactivateIfSuspended(ctx context.Context, academyID, id uuid.UUID) (bool, error) {
	query := `UPDATE users SET status = 'ACTIVE', updated_at = NOW() WHERE academy_id = $1 AND id = $2 AND status = 'SUSPENDED'`
	tag, err := r.db.Exec(ctx, query, academyID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
