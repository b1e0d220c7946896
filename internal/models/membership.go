package models

import (
	"time"

	"github.com/google/uuid"
)

type MembershipStatus string

const (
	MembershipTrial     MembershipStatus = "TRIAL"
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipPastDue   MembershipStatus = "PAST_DUE"
	MembershipExpired   MembershipStatus = "EXPIRED"
	MembershipCancelled MembershipStatus = "CANCELLED"
)

var membershipTransitions = map[MembershipStatus][]MembershipStatus{
	MembershipTrial:   {MembershipActive, MembershipExpired, MembershipCancelled},
	MembershipActive:  {MembershipPastDue, MembershipExpired, MembershipCancelled},
	MembershipPastDue: {MembershipActive, MembershipExpired, MembershipCancelled},
}

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipTrial, MembershipActive, MembershipPastDue, MembershipExpired, MembershipCancelled:
		return true
	}
	return false
}

// Live memberships block the creation of another one for the same user.
func (s MembershipStatus) Live() bool {
	return s == MembershipTrial || s == MembershipActive || s == MembershipPastDue
}

func (s MembershipStatus) Terminal() bool {
	return s == MembershipExpired || s == MembershipCancelled
}

// CanTransitionTo reports whether s may move to next. Same-status moves are
// allowed and treated as no-ops by callers.
func (s MembershipStatus) CanTransitionTo(next MembershipStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range membershipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Membership struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	AcademyID       uuid.UUID        `json:"academy_id" db:"academy_id"`
	UserID          uuid.UUID        `json:"user_id" db:"user_id"`
	PlanID          uuid.UUID        `json:"plan_id" db:"plan_id"`
	Status          MembershipStatus `json:"status" db:"status"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	NextBillingDate time.Time        `json:"next_billing_date" db:"next_billing_date"`
	TrialEndsAt     *time.Time       `json:"trial_ends_at" db:"trial_ends_at"`
	CancelledAt     *time.Time       `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

type MembershipFilters struct {
	Status *MembershipStatus
	UserID *uuid.UUID
	Limit  int
	Offset int
}

// OverdueMembership is a row returned by the overdue scan.
type OverdueMembership struct {
	MembershipID    uuid.UUID  `json:"membership_id"`
	AcademyID       uuid.UUID  `json:"academy_id"`
	UserID          uuid.UUID  `json:"user_id"`
	UserStatus      UserStatus `json:"user_status"`
	NextBillingDate time.Time  `json:"next_billing_date"`
}
