package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillingInterval string

const (
	IntervalMonthly   BillingInterval = "MONTHLY"
	IntervalQuarterly BillingInterval = "QUARTERLY"
	IntervalYearly    BillingInterval = "YEARLY"
)

func (i BillingInterval) Valid() bool {
	switch i {
	case IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	}
	return false
}

// AddTo advances t by one interval. A day past the end of the target month
// is clamped to its last day, so Jan 31 becomes Feb 28.
func (i BillingInterval) AddTo(t time.Time) time.Time {
	months := 1
	switch i {
	case IntervalQuarterly:
		months = 3
	case IntervalYearly:
		months = 12
	}

	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

type Plan struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	AcademyID      uuid.UUID       `json:"academy_id" db:"academy_id"`
	Name           string          `json:"name" db:"name"`
	Description    *string         `json:"description" db:"description"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Currency       string          `json:"currency" db:"currency"`
	Interval       BillingInterval `json:"interval" db:"billing_interval"`
	ClassesPerWeek *int            `json:"classes_per_week" db:"classes_per_week"`
	TrialDays      int             `json:"trial_days" db:"trial_days"`
	Active         bool            `json:"active" db:"active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
