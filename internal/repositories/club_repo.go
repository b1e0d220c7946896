package repositories

import (
	"context"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
)

type MatchRepository interface {
	Create(ctx context.Context, m *models.Match) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Match, error)
	Update(ctx context.Context, m *models.Match) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, category string) ([]*models.Match, error)
}

type matchRepo struct {
	db DBTX
}

func NewMatchRepository(db DBTX) MatchRepository {
	return &matchRepo{db: db}
}

const matchColumns = `id, academy_id, category, opponent, venue, home, played_at, our_score, their_score, status, notes, created_at, updated_at`

func scanMatch(row scanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(&m.ID, &m.AcademyID, &m.Category, &m.Opponent, &m.Venue, &m.Home, &m.PlayedAt, &m.OurScore,
		&m.TheirScore, &m.Status, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *matchRepo) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (id, academy_id, category, opponent, venue, home, played_at, our_score, their_score, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.AcademyID, m.Category, m.Opponent, m.Venue, m.Home, m.PlayedAt,
		m.OurScore, m.TheirScore, m.Status, m.Notes)
	return err
}

func (r *matchRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE academy_id = $1 AND id = $2`
	return scanMatch(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *matchRepo) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches
		SET category = $1, opponent = $2, venue = $3, home = $4, played_at = $5, our_score = $6, their_score = $7,
			status = $8, notes = $9, updated_at = NOW()
		WHERE academy_id = $10 AND id = $11
	`
	return affected(r.db.Exec(ctx, query, m.Category, m.Opponent, m.Venue, m.Home, m.PlayedAt, m.OurScore, m.TheirScore,
		m.Status, m.Notes, m.AcademyID, m.ID))
}

func (r *matchRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM matches WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *matchRepo) List(ctx context.Context, academyID uuid.UUID, category string) ([]*models.Match, error) {
	args := newArgList(academyID)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE academy_id = $1`
	if category != "" {
		query += " AND category = " + args.add(category)
	}
	query += " ORDER BY played_at DESC"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

type EvaluationRepository interface {
	Create(ctx context.Context, e *models.PlayerEvaluation) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.PlayerEvaluation, error)
	Update(ctx context.Context, e *models.PlayerEvaluation) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, playerID *uuid.UUID) ([]*models.PlayerEvaluation, error)
}

type evaluationRepo struct {
	db DBTX
}

func NewEvaluationRepository(db DBTX) EvaluationRepository {
	return &evaluationRepo{db: db}
}

const evaluationColumns = `id, academy_id, player_id, evaluator_id, evaluated_at, technique, tactics, physical, attitude, comments`

func scanEvaluation(row scanner) (*models.PlayerEvaluation, error) {
	e := &models.PlayerEvaluation{}
	err := row.Scan(&e.ID, &e.AcademyID, &e.PlayerID, &e.EvaluatorID, &e.EvaluatedAt, &e.Technique, &e.Tactics,
		&e.Physical, &e.Attitude, &e.Comments)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *evaluationRepo) Create(ctx context.Context, e *models.PlayerEvaluation) error {
	query := `
		INSERT INTO player_evaluations (id, academy_id, player_id, evaluator_id, evaluated_at, technique, tactics, physical, attitude, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.AcademyID, e.PlayerID, e.EvaluatorID, e.EvaluatedAt, e.Technique,
		e.Tactics, e.Physical, e.Attitude, e.Comments)
	return err
}

func (r *evaluationRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.PlayerEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM player_evaluations WHERE academy_id = $1 AND id = $2`
	return scanEvaluation(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *evaluationRepo) Update(ctx context.Context, e *models.PlayerEvaluation) error {
	query := `
		UPDATE player_evaluations
		SET technique = $1, tactics = $2, physical = $3, attitude = $4, comments = $5
		WHERE academy_id = $6 AND id = $7
	`
	return affected(r.db.Exec(ctx, query, e.Technique, e.Tactics, e.Physical, e.Attitude, e.Comments, e.AcademyID, e.ID))
}

func (r *evaluationRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM player_evaluations WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *evaluationRepo) List(ctx context.Context, academyID uuid.UUID, playerID *uuid.UUID) ([]*models.PlayerEvaluation, error) {
	args := newArgList(academyID)
	query := `SELECT ` + evaluationColumns + ` FROM player_evaluations WHERE academy_id = $1`
	if playerID != nil {
		query += " AND player_id = " + args.add(*playerID)
	}
	query += " ORDER BY evaluated_at DESC"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluations []*models.PlayerEvaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}

type TrainingRepository interface {
	CreateSchedule(ctx context.Context, s *models.TrainingSchedule) error
	GetSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSchedule, error)
	UpdateSchedule(ctx context.Context, s *models.TrainingSchedule) error
	DeleteSchedule(ctx context.Context, academyID, id uuid.UUID) error
	ListSchedules(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.TrainingSchedule, error)

	CreateSession(ctx context.Context, s *models.TrainingSession) error
	GetSession(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSession, error)
	UpdateSession(ctx context.Context, s *models.TrainingSession) error
	DeleteSession(ctx context.Context, academyID, id uuid.UUID) error
	ListSessions(ctx context.Context, academyID uuid.UUID, from, to time.Time, category string) ([]*models.TrainingSession, error)
	SessionExists(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error)
	// InsertSessionFromSchedule reports false when (schedule_id, date) already exists.
	InsertSessionFromSchedule(ctx context.Context, s *models.TrainingSession) (bool, error)
}

type trainingRepo struct {
	db DBTX
}

func NewTrainingRepository(db DBTX) TrainingRepository {
	return &trainingRepo{db: db}
}

const trainingScheduleColumns = `id, academy_id, category, location, weekday, start_time, duration_minutes, valid_from, valid_until, active, created_at, updated_at`

func scanTrainingSchedule(row scanner) (*models.TrainingSchedule, error) {
	s := &models.TrainingSchedule{}
	err := row.Scan(&s.ID, &s.AcademyID, &s.Category, &s.Location, &s.Weekday, &s.StartTime, &s.DurationMinutes,
		&s.ValidFrom, &s.ValidUntil, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *trainingRepo) CreateSchedule(ctx context.Context, s *models.TrainingSchedule) error {
	query := `
		INSERT INTO training_schedules (id, academy_id, category, location, weekday, start_time, duration_minutes, valid_from, valid_until, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.AcademyID, s.Category, s.Location, s.Weekday, s.StartTime,
		s.DurationMinutes, s.ValidFrom, s.ValidUntil, s.Active)
	return err
}

func (r *trainingRepo) GetSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSchedule, error) {
	query := `SELECT ` + trainingScheduleColumns + ` FROM training_schedules WHERE academy_id = $1 AND id = $2`
	return scanTrainingSchedule(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *trainingRepo) UpdateSchedule(ctx context.Context, s *models.TrainingSchedule) error {
	query := `
		UPDATE training_schedules
		SET category = $1, location = $2, weekday = $3, start_time = $4, duration_minutes = $5, valid_from = $6,
			valid_until = $7, active = $8, updated_at = NOW()
		WHERE academy_id = $9 AND id = $10
	`
	return affected(r.db.Exec(ctx, query, s.Category, s.Location, s.Weekday, s.StartTime, s.DurationMinutes, s.ValidFrom,
		s.ValidUntil, s.Active, s.AcademyID, s.ID))
}

func (r *trainingRepo) DeleteSchedule(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM training_schedules WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *trainingRepo) ListSchedules(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.TrainingSchedule, error) {
	query := `SELECT ` + trainingScheduleColumns + ` FROM training_schedules WHERE academy_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY weekday, start_time`

	rows, err := r.db.Query(ctx, query, academyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.TrainingSchedule
	for rows.Next() {
		s, err := scanTrainingSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

const trainingSessionColumns = `id, academy_id, schedule_id, category, date, starts_at, ends_at, location, focus, notes, status, created_at`

func scanTrainingSession(row scanner) (*models.TrainingSession, error) {
	s := &models.TrainingSession{}
	err := row.Scan(&s.ID, &s.AcademyID, &s.ScheduleID, &s.Category, &s.Date, &s.StartsAt, &s.EndsAt, &s.Location,
		&s.Focus, &s.Notes, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

const insertTrainingSession = `
	INSERT INTO training_sessions (id, academy_id, schedule_id, category, date, starts_at, ends_at, location, focus, notes, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
`

func (r *trainingRepo) CreateSession(ctx context.Context, s *models.TrainingSession) error {
	_, err := r.db.Exec(ctx, insertTrainingSession, s.ID, s.AcademyID, s.ScheduleID, s.Category, s.Date, s.StartsAt,
		s.EndsAt, s.Location, s.Focus, s.Notes, s.Status)
	return err
}

func (r *trainingRepo) GetSession(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSession, error) {
	query := `SELECT ` + trainingSessionColumns + ` FROM training_sessions WHERE academy_id = $1 AND id = $2`
	return scanTrainingSession(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *trainingRepo) UpdateSession(ctx context.Context, s *models.TrainingSession) error {
	query := `
		UPDATE training_sessions
		SET location = $1, focus = $2, notes = $3, status = $4
		WHERE academy_id = $5 AND id = $6
	`
	return affected(r.db.Exec(ctx, query, s.Location, s.Focus, s.Notes, s.Status, s.AcademyID, s.ID))
}

func (r *trainingRepo) DeleteSession(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM training_sessions WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *trainingRepo) ListSessions(ctx context.Context, academyID uuid.UUID, from, to time.Time, category string) ([]*models.TrainingSession, error) {
	args := newArgList(academyID, from, to)
	query := `SELECT ` + trainingSessionColumns + ` FROM training_sessions WHERE academy_id = $1 AND date BETWEEN $2 AND $3`
	if category != "" {
		query += " AND category = " + args.add(category)
	}
	query += " ORDER BY starts_at"

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.TrainingSession
	for rows.Next() {
		s, err := scanTrainingSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *trainingRepo) SessionExists(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM training_sessions WHERE schedule_id = $1 AND date = $2)`
	err := r.db.QueryRow(ctx, query, scheduleID, date).Scan(&exists)
	return exists, err
}

func (r *trainingRepo) InsertSessionFromSchedule(ctx context.Context, s *models.TrainingSession) (bool, error) {
	tag, err := r.db.Exec(ctx, insertTrainingSession+` ON CONFLICT (schedule_id, date) DO NOTHING`, s.ID, s.AcademyID,
		s.ScheduleID, s.Category, s.Date, s.StartsAt, s.EndsAt, s.Location, s.Focus, s.Notes, s.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Expense, error)
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.Expense, error)
	TotalsByCategory(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.ExpenseCategoryTotal, error)
}

type expenseRepo struct {
	db DBTX
}

func NewExpenseRepository(db DBTX) ExpenseRepository {
	return &expenseRepo{db: db}
}

const expenseColumns = `id, academy_id, category, description, amount, spent_on, receipt_object, created_by, created_at`

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	err := row.Scan(&e.ID, &e.AcademyID, &e.Category, &e.Description, &e.Amount, &e.SpentOn, &e.ReceiptObject,
		&e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *expenseRepo) Create(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO expenses (id, academy_id, category, description, amount, spent_on, receipt_object, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.AcademyID, e.Category, e.Description, e.Amount, e.SpentOn, e.ReceiptObject, e.CreatedBy)
	return err
}

func (r *expenseRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE academy_id = $1 AND id = $2`
	return scanExpense(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *expenseRepo) Update(ctx context.Context, e *models.Expense) error {
	query := `
		UPDATE expenses
		SET category = $1, description = $2, amount = $3, spent_on = $4, receipt_object = $5
		WHERE academy_id = $6 AND id = $7
	`
	return affected(r.db.Exec(ctx, query, e.Category, e.Description, e.Amount, e.SpentOn, e.ReceiptObject, e.AcademyID, e.ID))
}

func (r *expenseRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM expenses WHERE academy_id = $1 AND id = $2`, academyID, id))
}

func (r *expenseRepo) List(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE academy_id = $1 AND spent_on >= $2 AND spent_on < $3 ORDER BY spent_on DESC`
	rows, err := r.db.Query(ctx, query, academyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *expenseRepo) TotalsByCategory(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.ExpenseCategoryTotal, error) {
	query := `
		SELECT category, SUM(amount), COUNT(*)
		FROM expenses
		WHERE academy_id = $1 AND spent_on >= $2 AND spent_on < $3
		GROUP BY category
		ORDER BY category
	`
	rows, err := r.db.Query(ctx, query, academyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []*models.ExpenseCategoryTotal
	for rows.Next() {
		t := &models.ExpenseCategoryTotal{}
		if err := rows.Scan(&t.Category, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
