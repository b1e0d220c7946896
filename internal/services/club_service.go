package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type MatchRequest struct {
	Category   string    `json:"category" validate:"required,max=60"`
	Opponent   string    `json:"opponent" validate:"required,max=120"`
	Venue      *string   `json:"venue" validate:"omitempty,max=200"`
	Home       bool      `json:"home"`
	PlayedAt   time.Time `json:"played_at" validate:"required"`
	OurScore   *int      `json:"our_score" validate:"omitempty,gte=0"`
	TheirScore *int      `json:"their_score" validate:"omitempty,gte=0"`
	Status     string    `json:"status" validate:"omitempty,oneof=SCHEDULED PLAYED CANCELLED"`
	Notes      *string   `json:"notes" validate:"omitempty,max=2000"`
}

type ScoreRequest struct {
	OurScore   *int `json:"our_score" validate:"required,gte=0"`
	TheirScore *int `json:"their_score" validate:"required,gte=0"`
}

type EvaluationRequest struct {
	PlayerID    string     `json:"player_id" validate:"required,uuid"`
	EvaluatedAt *time.Time `json:"evaluated_at"`
	Technique   int        `json:"technique" validate:"required,gte=1,lte=10"`
	Tactics     int        `json:"tactics" validate:"required,gte=1,lte=10"`
	Physical    int        `json:"physical" validate:"required,gte=1,lte=10"`
	Attitude    int        `json:"attitude" validate:"required,gte=1,lte=10"`
	Comments    *string    `json:"comments" validate:"omitempty,max=2000"`
}

type TrainingScheduleRequest struct {
	Category        string  `json:"category" validate:"required,max=60"`
	Location        *string `json:"location" validate:"omitempty,max=200"`
	Weekday         *int    `json:"weekday" validate:"required,weekday"`
	StartTime       string  `json:"start_time" validate:"required,hhmm"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gte=15,lte=480"`
	ValidFrom       string  `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidUntil      *string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	Active          *bool   `json:"active"`
}

type TrainingSessionRequest struct {
	Category string    `json:"category" validate:"required,max=60"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
	Location *string   `json:"location" validate:"omitempty,max=200"`
	Focus    *string   `json:"focus" validate:"omitempty,max=500"`
	Notes    *string   `json:"notes" validate:"omitempty,max=2000"`
	Status   string    `json:"status" validate:"omitempty,oneof=SCHEDULED CANCELLED COMPLETED"`
}

type ExpenseRequest struct {
	Category    string          `json:"category" form:"category" validate:"required,max=60"`
	Description string          `json:"description" form:"description" validate:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" form:"amount"`
	SpentOn     string          `json:"spent_on" form:"spent_on" validate:"required,datetime=2006-01-02"`
}

// ClubService holds the features only CLUB academies have. Every method
// returns ErrForbidden for other academies.
type ClubService interface {
	CreateMatch(ctx context.Context, academyID uuid.UUID, req *MatchRequest) (*models.Match, error)
	GetMatch(ctx context.Context, academyID, id uuid.UUID) (*models.Match, error)
	UpdateMatch(ctx context.Context, academyID, id uuid.UUID, req *MatchRequest) (*models.Match, error)
	RecordScore(ctx context.Context, academyID, id uuid.UUID, req *ScoreRequest) (*models.Match, error)
	DeleteMatch(ctx context.Context, academyID, id uuid.UUID) error
	ListMatches(ctx context.Context, academyID uuid.UUID, category string) ([]*models.Match, error)

	CreateEvaluation(ctx context.Context, academyID, evaluatorID uuid.UUID, req *EvaluationRequest) (*models.PlayerEvaluation, error)
	GetEvaluation(ctx context.Context, academyID, id uuid.UUID) (*models.PlayerEvaluation, error)
	UpdateEvaluation(ctx context.Context, academyID, id uuid.UUID, req *EvaluationRequest) (*models.PlayerEvaluation, error)
	DeleteEvaluation(ctx context.Context, academyID, id uuid.UUID) error
	ListEvaluations(ctx context.Context, academyID uuid.UUID, playerID *uuid.UUID) ([]*models.PlayerEvaluation, error)

	CreateTrainingSchedule(ctx context.Context, academyID uuid.UUID, req *TrainingScheduleRequest) (*models.TrainingSchedule, error)
	GetTrainingSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSchedule, error)
	UpdateTrainingSchedule(ctx context.Context, academyID, id uuid.UUID, req *TrainingScheduleRequest) (*models.TrainingSchedule, error)
	DeleteTrainingSchedule(ctx context.Context, academyID, id uuid.UUID) error
	ListTrainingSchedules(ctx context.Context, academyID uuid.UUID) ([]*models.TrainingSchedule, error)

	CreateSession(ctx context.Context, academyID uuid.UUID, req *TrainingSessionRequest) (*models.TrainingSession, error)
	GetSession(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSession, error)
	UpdateSession(ctx context.Context, academyID, id uuid.UUID, req *TrainingSessionRequest) (*models.TrainingSession, error)
	DeleteSession(ctx context.Context, academyID, id uuid.UUID) error
	ListSessions(ctx context.Context, academyID uuid.UUID, from, to time.Time, category string) ([]*models.TrainingSession, error)

	CreateExpense(ctx context.Context, academyID, actorID uuid.UUID, req *ExpenseRequest, receipt *Upload) (*models.Expense, error)
	GetExpense(ctx context.Context, academyID, id uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, academyID, id uuid.UUID, req *ExpenseRequest) (*models.Expense, error)
	UploadExpenseReceipt(ctx context.Context, academyID, id uuid.UUID, receipt *Upload) (*models.Expense, error)
	DeleteExpense(ctx context.Context, academyID, id uuid.UUID) error
	ListExpenses(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.Expense, error)
	// ExpenseSummary totals one calendar month ("2006-01") per category.
	ExpenseSummary(ctx context.Context, academyID uuid.UUID, month string) (*models.ExpenseSummary, error)
}

type clubService struct {
	academies      AcademyService
	matchRepo      repositories.MatchRepository
	evaluationRepo repositories.EvaluationRepository
	trainingRepo   repositories.TrainingRepository
	expenseRepo    repositories.ExpenseRepository
	userRepo       repositories.UserRepository
	storage        StorageService
	now            func() time.Time
}

// ClubDeps groups the collaborators of the club service.
type ClubDeps struct {
	Academies   AcademyService
	Matches     repositories.MatchRepository
	Evaluations repositories.EvaluationRepository
	Training    repositories.TrainingRepository
	Expenses    repositories.ExpenseRepository
	Users       repositories.UserRepository
	Storage     StorageService
}

func NewClubService(deps ClubDeps) ClubService {
	return &clubService{
		academies:      deps.Academies,
		matchRepo:      deps.Matches,
		evaluationRepo: deps.Evaluations,
		trainingRepo:   deps.Training,
		expenseRepo:    deps.Expenses,
		userRepo:       deps.Users,
		storage:        deps.Storage,
		now:            time.Now,
	}
}

func (s *clubService) club(ctx context.Context, academyID uuid.UUID) (*models.Academy, error) {
	return s.academies.RequireClub(ctx, academyID)
}

// Matches

func applyMatch(m *models.Match, req *MatchRequest) error {
	if (req.OurScore == nil) != (req.TheirScore == nil) {
		return invalidField("their_score", "both scores must be set together")
	}
	m.Category = strings.TrimSpace(req.Category)
	m.Opponent = strings.TrimSpace(req.Opponent)
	m.Venue = req.Venue
	m.Home = req.Home
	m.PlayedAt = req.PlayedAt.UTC()
	m.OurScore = req.OurScore
	m.TheirScore = req.TheirScore
	m.Notes = req.Notes

	switch {
	case req.OurScore != nil:
		m.Status = models.MatchPlayed
	case req.Status != "":
		m.Status = models.MatchStatus(req.Status)
	case m.Status == "":
		m.Status = models.MatchScheduled
	}
	if m.Status == models.MatchPlayed && m.OurScore == nil {
		return invalidField("our_score", "a played match needs a score")
	}
	return nil
}

func (s *clubService) CreateMatch(ctx context.Context, academyID uuid.UUID, req *MatchRequest) (*models.Match, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	match := &models.Match{ID: uuid.New(), AcademyID: academyID, CreatedAt: now, UpdatedAt: now}
	if err := applyMatch(match, req); err != nil {
		return nil, err
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

func (s *clubService) GetMatch(ctx context.Context, academyID, id uuid.UUID) (*models.Match, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	match, err := s.matchRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("match", err)
	}
	return match, nil
}

func (s *clubService) UpdateMatch(ctx context.Context, academyID, id uuid.UUID, req *MatchRequest) (*models.Match, error) {
	match, err := s.GetMatch(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyMatch(match, req); err != nil {
		return nil, err
	}
	return s.saveMatch(ctx, match)
}

// RecordScore sets both scores and marks the match PLAYED.
func (s *clubService) RecordScore(ctx context.Context, academyID, id uuid.UUID, req *ScoreRequest) (*models.Match, error) {
	if req.OurScore == nil || req.TheirScore == nil {
		return nil, invalidField("our_score", "both scores are required")
	}
	match, err := s.GetMatch(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchCancelled {
		return nil, fmt.Errorf("%w: match is cancelled", ErrInvalidTransition)
	}
	match.OurScore = req.OurScore
	match.TheirScore = req.TheirScore
	match.Status = models.MatchPlayed
	return s.saveMatch(ctx, match)
}

func (s *clubService) saveMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	match.UpdatedAt = s.now().UTC()
	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, notFound("match", err)
	}
	return match, nil
}

func (s *clubService) DeleteMatch(ctx context.Context, academyID, id uuid.UUID) error {
	if _, err := s.club(ctx, academyID); err != nil {
		return err
	}
	return notFound("match", s.matchRepo.Delete(ctx, academyID, id))
}

func (s *clubService) ListMatches(ctx context.Context, academyID uuid.UUID, category string) ([]*models.Match, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	return s.matchRepo.List(ctx, academyID, strings.TrimSpace(category))
}

// Evaluations

func (s *clubService) applyEvaluation(ctx context.Context, academyID uuid.UUID, e *models.PlayerEvaluation, req *EvaluationRequest) error {
	playerID, err := common.ValidateUUID(req.PlayerID, "player_id")
	if err != nil {
		return invalidField("player_id", "%s", err.Error())
	}
	if _, err := loadStudent(ctx, s.userRepo, academyID, playerID, "player_id"); err != nil {
		return err
	}
	scores := []struct {
		field string
		value int
	}{
		{"technique", req.Technique},
		{"tactics", req.Tactics},
		{"physical", req.Physical},
		{"attitude", req.Attitude},
	}
	for _, sc := range scores {
		if sc.value < 1 || sc.value > 10 {
			return invalidField(sc.field, "%s must be between 1 and 10", sc.field)
		}
	}
	e.PlayerID = playerID
	e.Technique = req.Technique
	e.Tactics = req.Tactics
	e.Physical = req.Physical
	e.Attitude = req.Attitude
	e.Comments = req.Comments
	if req.EvaluatedAt != nil {
		e.EvaluatedAt = req.EvaluatedAt.UTC()
	}
	return nil
}

func (s *clubService) CreateEvaluation(ctx context.Context, academyID, evaluatorID uuid.UUID, req *EvaluationRequest) (*models.PlayerEvaluation, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	eval := &models.PlayerEvaluation{
		ID:          uuid.New(),
		AcademyID:   academyID,
		EvaluatorID: evaluatorID,
		EvaluatedAt: s.now().UTC(),
	}
	if err := s.applyEvaluation(ctx, academyID, eval, req); err != nil {
		return nil, err
	}
	if err := s.evaluationRepo.Create(ctx, eval); err != nil {
		return nil, fmt.Errorf("create evaluation: %w", err)
	}
	return eval, nil
}

func (s *clubService) GetEvaluation(ctx context.Context, academyID, id uuid.UUID) (*models.PlayerEvaluation, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	eval, err := s.evaluationRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("evaluation", err)
	}
	return eval, nil
}

func (s *clubService) UpdateEvaluation(ctx context.Context, academyID, id uuid.UUID, req *EvaluationRequest) (*models.PlayerEvaluation, error) {
	eval, err := s.GetEvaluation(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEvaluation(ctx, academyID, eval, req); err != nil {
		return nil, err
	}
	if err := s.evaluationRepo.Update(ctx, eval); err != nil {
		return nil, notFound("evaluation", err)
	}
	return eval, nil
}

func (s *clubService) DeleteEvaluation(ctx context.Context, academyID, id uuid.UUID) error {
	if _, err := s.club(ctx, academyID); err != nil {
		return err
	}
	return notFound("evaluation", s.evaluationRepo.Delete(ctx, academyID, id))
}

func (s *clubService) ListEvaluations(ctx context.Context, academyID uuid.UUID, playerID *uuid.UUID) ([]*models.PlayerEvaluation, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	return s.evaluationRepo.List(ctx, academyID, playerID)
}

// Training

func (s *clubService) CreateTrainingSchedule(ctx context.Context, academyID uuid.UUID, req *TrainingScheduleRequest) (*models.TrainingSchedule, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	slot, err := parseSlot(req.Weekday, req.StartTime, req.DurationMinutes, req.ValidFrom, req.ValidUntil, req.Active)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	schedule := &models.TrainingSchedule{
		ID:         uuid.New(),
		AcademyID:  academyID,
		Category:   strings.TrimSpace(req.Category),
		Location:   req.Location,
		WeeklySlot: slot,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.trainingRepo.CreateSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create training schedule: %w", err)
	}
	return schedule, nil
}

func (s *clubService) GetTrainingSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSchedule, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	schedule, err := s.trainingRepo.GetSchedule(ctx, academyID, id)
	if err != nil {
		return nil, notFound("training schedule", err)
	}
	return schedule, nil
}

func (s *clubService) UpdateTrainingSchedule(ctx context.Context, academyID, id uuid.UUID, req *TrainingScheduleRequest) (*models.TrainingSchedule, error) {
	schedule, err := s.GetTrainingSchedule(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	slot, err := parseSlot(req.Weekday, req.StartTime, req.DurationMinutes, req.ValidFrom, req.ValidUntil, req.Active)
	if err != nil {
		return nil, err
	}
	schedule.Category = strings.TrimSpace(req.Category)
	schedule.Location = req.Location
	schedule.WeeklySlot = slot
	schedule.UpdatedAt = s.now().UTC()
	if err := s.trainingRepo.UpdateSchedule(ctx, schedule); err != nil {
		return nil, notFound("training schedule", err)
	}
	return schedule, nil
}

func (s *clubService) DeleteTrainingSchedule(ctx context.Context, academyID, id uuid.UUID) error {
	if _, err := s.club(ctx, academyID); err != nil {
		return err
	}
	return notFound("training schedule", s.trainingRepo.DeleteSchedule(ctx, academyID, id))
}

func (s *clubService) ListTrainingSchedules(ctx context.Context, academyID uuid.UUID) ([]*models.TrainingSchedule, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	return s.trainingRepo.ListSchedules(ctx, academyID, false)
}

func applySession(academy *models.Academy, session *models.TrainingSession, req *TrainingSessionRequest) error {
	if !req.EndsAt.After(req.StartsAt) {
		return invalidField("ends_at", "ends_at must be after starts_at")
	}
	session.Category = strings.TrimSpace(req.Category)
	session.Date = localDate(req.StartsAt, academy.Location())
	session.StartsAt = req.StartsAt.UTC()
	session.EndsAt = req.EndsAt.UTC()
	session.Location = req.Location
	session.Focus = req.Focus
	session.Notes = req.Notes
	if req.Status != "" {
		session.Status = models.InstanceStatus(req.Status)
	}
	return nil
}

func (s *clubService) CreateSession(ctx context.Context, academyID uuid.UUID, req *TrainingSessionRequest) (*models.TrainingSession, error) {
	academy, err := s.club(ctx, academyID)
	if err != nil {
		return nil, err
	}
	session := &models.TrainingSession{
		ID:        uuid.New(),
		AcademyID: academyID,
		Status:    models.InstanceScheduled,
		CreatedAt: s.now().UTC(),
	}
	if err := applySession(academy, session, req); err != nil {
		return nil, err
	}
	if err := s.trainingRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create training session: %w", err)
	}
	return session, nil
}

func (s *clubService) GetSession(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSession, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	session, err := s.trainingRepo.GetSession(ctx, academyID, id)
	if err != nil {
		return nil, notFound("training session", err)
	}
	return session, nil
}

func (s *clubService) UpdateSession(ctx context.Context, academyID, id uuid.UUID, req *TrainingSessionRequest) (*models.TrainingSession, error) {
	academy, err := s.club(ctx, academyID)
	if err != nil {
		return nil, err
	}
	session, err := s.trainingRepo.GetSession(ctx, academyID, id)
	if err != nil {
		return nil, notFound("training session", err)
	}
	if err := applySession(academy, session, req); err != nil {
		return nil, err
	}
	if err := s.trainingRepo.UpdateSession(ctx, session); err != nil {
		return nil, notFound("training session", err)
	}
	return session, nil
}

func (s *clubService) DeleteSession(ctx context.Context, academyID, id uuid.UUID) error {
	if _, err := s.club(ctx, academyID); err != nil {
		return err
	}
	return notFound("training session", s.trainingRepo.DeleteSession(ctx, academyID, id))
}

func (s *clubService) ListSessions(ctx context.Context, academyID uuid.UUID, from, to time.Time, category string) ([]*models.TrainingSession, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	if from.IsZero() {
		from = common.TruncateToDay(s.now().UTC())
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 7)
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.trainingRepo.ListSessions(ctx, academyID, from, to, strings.TrimSpace(category))
}

// Expenses

func applyExpense(e *models.Expense, req *ExpenseRequest) error {
	if !req.Amount.IsPositive() {
		return invalidField("amount", "amount must be greater than 0")
	}
	spentOn, err := common.ParseDate(req.SpentOn, "spent_on")
	if err != nil {
		return invalidField("spent_on", "%s", err.Error())
	}
	e.Category = strings.TrimSpace(req.Category)
	e.Description = strings.TrimSpace(req.Description)
	e.Amount = req.Amount.Round(2)
	e.SpentOn = spentOn
	return nil
}

func (s *clubService) CreateExpense(ctx context.Context, academyID, actorID uuid.UUID, req *ExpenseRequest, receipt *Upload) (*models.Expense, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	expense := &models.Expense{
		ID:        uuid.New(),
		AcademyID: academyID,
		CreatedBy: actorID,
		CreatedAt: s.now().UTC(),
	}
	if err := applyExpense(expense, req); err != nil {
		return nil, err
	}
	if receipt != nil {
		key, err := s.storeReceipt(ctx, expense, receipt)
		if err != nil {
			return nil, err
		}
		expense.ReceiptObject = &key
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		if expense.ReceiptObject != nil {
			s.removeObject(ctx, *expense.ReceiptObject)
		}
		return nil, fmt.Errorf("create expense: %w", err)
	}
	expense.ReceiptURL = presign(ctx, s.storage, expense.ReceiptObject)
	return expense, nil
}

// storeReceipt uploads to academies/{id}/expenses/{expense}/receipt.{ext}.
func (s *clubService) storeReceipt(ctx context.Context, expense *models.Expense, receipt *Upload) (string, error) {
	ext, err := checkUpload("receipt", receipt, maxProofSize, proofTypes)
	if err != nil {
		return "", err
	}
	key := academyObjectKey(expense.AcademyID, "expenses", expense.ID.String(), "receipt."+ext)
	if err := s.storage.Upload(ctx, key, receipt.Reader, receipt.Size, receipt.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *clubService) removeObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("object", key).Msg("failed to remove object")
	}
}

func (s *clubService) GetExpense(ctx context.Context, academyID, id uuid.UUID) (*models.Expense, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	expense, err := s.expenseRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("expense", err)
	}
	expense.ReceiptURL = presign(ctx, s.storage, expense.ReceiptObject)
	return expense, nil
}

func (s *clubService) UpdateExpense(ctx context.Context, academyID, id uuid.UUID, req *ExpenseRequest) (*models.Expense, error) {
	expense, err := s.GetExpense(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyExpense(expense, req); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, notFound("expense", err)
	}
	return expense, nil
}

func (s *clubService) UploadExpenseReceipt(ctx context.Context, academyID, id uuid.UUID, receipt *Upload) (*models.Expense, error) {
	expense, err := s.GetExpense(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	previous := expense.ReceiptObject
	key, err := s.storeReceipt(ctx, expense, receipt)
	if err != nil {
		return nil, err
	}
	expense.ReceiptObject = &key
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, notFound("expense", err)
	}
	if previous != nil && *previous != key {
		s.removeObject(ctx, *previous)
	}
	expense.ReceiptURL = presign(ctx, s.storage, expense.ReceiptObject)
	return expense, nil
}

func (s *clubService) DeleteExpense(ctx context.Context, academyID, id uuid.UUID) error {
	expense, err := s.GetExpense(ctx, academyID, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, academyID, id); err != nil {
		return notFound("expense", err)
	}
	if expense.ReceiptObject != nil {
		s.removeObject(ctx, *expense.ReceiptObject)
	}
	return nil
}

func (s *clubService) ListExpenses(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.Expense, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	if to.IsZero() {
		to = common.TruncateToDay(s.now().UTC())
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if to.Before(from) {
		return nil, invalidField("to", "to must not be before from")
	}
	expenses, err := s.expenseRepo.List(ctx, academyID, from, to)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.ReceiptURL = presign(ctx, s.storage, e.ReceiptObject)
	}
	return expenses, nil
}

func (s *clubService) ExpenseSummary(ctx context.Context, academyID uuid.UUID, month string) (*models.ExpenseSummary, error) {
	if _, err := s.club(ctx, academyID); err != nil {
		return nil, err
	}
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, invalidField("month", "month must be formatted as YYYY-MM")
	}
	to := from.AddDate(0, 1, -1)

	totals, err := s.expenseRepo.TotalsByCategory(ctx, academyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("expense totals: %w", err)
	}
	summary := &models.ExpenseSummary{Month: month, Total: decimal.Zero, Categories: totals}
	for _, t := range totals {
		summary.Total = summary.Total.Add(t.Total)
	}
	return summary, nil
}
