package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchPlayed    MatchStatus = "PLAYED"
	MatchCancelled MatchStatus = "CANCELLED"
)

type Match struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	AcademyID  uuid.UUID   `json:"academy_id" db:"academy_id"`
	Category   string      `json:"category" db:"category"`
	Opponent   string      `json:"opponent" db:"opponent"`
	Venue      *string     `json:"venue" db:"venue"`
	Home       bool        `json:"home" db:"home"`
	PlayedAt   time.Time   `json:"played_at" db:"played_at"`
	OurScore   *int        `json:"our_score" db:"our_score"`
	TheirScore *int        `json:"their_score" db:"their_score"`
	Status     MatchStatus `json:"status" db:"status"`
	Notes      *string     `json:"notes" db:"notes"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// Result is W, D or L for played matches and "" otherwise.
func (m *Match) Result() string {
	if m.Status != MatchPlayed || m.OurScore == nil || m.TheirScore == nil {
		return ""
	}
	switch {
	case *m.OurScore > *m.TheirScore:
		return "W"
	case *m.OurScore < *m.TheirScore:
		return "L"
	default:
		return "D"
	}
}

type PlayerEvaluation struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AcademyID   uuid.UUID `json:"academy_id" db:"academy_id"`
	PlayerID    uuid.UUID `json:"player_id" db:"player_id"`
	EvaluatorID uuid.UUID `json:"evaluator_id" db:"evaluator_id"`
	EvaluatedAt time.Time `json:"evaluated_at" db:"evaluated_at"`
	Technique   int       `json:"technique" db:"technique"`
	Tactics     int       `json:"tactics" db:"tactics"`
	Physical    int       `json:"physical" db:"physical"`
	Attitude    int       `json:"attitude" db:"attitude"`
	Comments    *string   `json:"comments" db:"comments"`
}

// Average of the four scores, rounded to two decimals.
func (e *PlayerEvaluation) Average() decimal.Decimal {
	sum := decimal.NewFromInt(int64(e.Technique + e.Tactics + e.Physical + e.Attitude))
	return sum.Div(decimal.NewFromInt(4)).Round(2)
}

type TrainingSchedule struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AcademyID uuid.UUID `json:"academy_id" db:"academy_id"`
	Category  string    `json:"category" db:"category"`
	Location  *string   `json:"location" db:"location"`
	WeeklySlot
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TrainingSession struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	AcademyID  uuid.UUID      `json:"academy_id" db:"academy_id"`
	ScheduleID *uuid.UUID     `json:"schedule_id" db:"schedule_id"`
	Category   string         `json:"category" db:"category"`
	Date       time.Time      `json:"date" db:"date"`
	StartsAt   time.Time      `json:"starts_at" db:"starts_at"`
	EndsAt     time.Time      `json:"ends_at" db:"ends_at"`
	Location   *string        `json:"location" db:"location"`
	Focus      *string        `json:"focus" db:"focus"`
	Notes      *string        `json:"notes" db:"notes"`
	Status     InstanceStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

type Expense struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	AcademyID     uuid.UUID       `json:"academy_id" db:"academy_id"`
	Category      string          `json:"category" db:"category"`
	Description   string          `json:"description" db:"description"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	SpentOn       time.Time       `json:"spent_on" db:"spent_on"`
	ReceiptObject *string         `json:"-" db:"receipt_object"`
	ReceiptURL    *string         `json:"receipt_url,omitempty" db:"-"`
	CreatedBy     uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type ExpenseCategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type ExpenseSummary struct {
	Month      string                  `json:"month"`
	Total      decimal.Decimal         `json:"total"`
	Categories []*ExpenseCategoryTotal `json:"categories"`
}
