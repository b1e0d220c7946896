package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipTransitions(t *testing.T) {
	tests := []struct {
		from, to MembershipStatus
		allowed  bool
	}{
		{MembershipTrial, MembershipActive, true},
		{MembershipTrial, MembershipPastDue, false},
		{MembershipActive, MembershipPastDue, true},
		{MembershipActive, MembershipTrial, false},
		{MembershipPastDue, MembershipActive, true},
		{MembershipExpired, MembershipActive, false},
		{MembershipCancelled, MembershipActive, false},
		{MembershipCancelled, MembershipCancelled, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, MembershipPastDue.Live())
	assert.False(t, MembershipExpired.Live())
}

func TestPaymentTransitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		allowed  bool
	}{
		{PaymentPending, PaymentProcessing, true},
		{PaymentPending, PaymentPaid, true},
		{PaymentProcessing, PaymentPending, false},
		{PaymentPaid, PaymentRefunded, true},
		{PaymentPaid, PaymentFailed, false},
		{PaymentFailed, PaymentPaid, false},
		{PaymentRefunded, PaymentPaid, false},
		{PaymentPaid, PaymentPaid, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, PaymentCanceled.Terminal())
	assert.False(t, PaymentPaid.Terminal())
}

func TestBillingIntervalAddTo(t *testing.T) {
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), IntervalMonthly.AddTo(base))
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), IntervalQuarterly.AddTo(base))
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), IntervalYearly.AddTo(base))

	endOfMonth := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), IntervalMonthly.AddTo(endOfMonth))
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), IntervalQuarterly.AddTo(endOfMonth))
	assert.Equal(t, time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC), IntervalYearly.AddTo(time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestWeeklySlotOccurrence(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	slot := WeeklySlot{Weekday: 1, StartTime: "19:30", DurationMinutes: 90}
	start, end, err := slot.Occurrence(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), loc)
	require.NoError(t, err)
	assert.Equal(t, 19, start.Hour())
	assert.Equal(t, 30, start.Minute())
	assert.Equal(t, loc, start.Location())
	assert.Equal(t, 90*time.Minute, end.Sub(start))

	_, _, err = WeeklySlot{StartTime: "bad"}.Occurrence(time.Now(), time.UTC)
	assert.Error(t, err)
}

func TestWeeklySlotWindow(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	slot := WeeklySlot{ValidFrom: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), ValidUntil: &until}
	start, end, ok := slot.Window(from, to)
	assert.True(t, ok)
	assert.Equal(t, slot.ValidFrom, start)
	assert.Equal(t, until, end)

	expired := WeeklySlot{ValidFrom: from.AddDate(0, -2, 0), ValidUntil: &from}
	_, _, ok = expired.Window(from.AddDate(0, 0, 1), to)
	assert.False(t, ok)
}

func TestMatchResultAndEvaluationAverage(t *testing.T) {
	three, one := 3, 1
	m := &Match{Status: MatchPlayed, OurScore: &three, TheirScore: &one}
	assert.Equal(t, "W", m.Result())
	m.OurScore, m.TheirScore = &one, &three
	assert.Equal(t, "L", m.Result())
	m.TheirScore = &one
	assert.Equal(t, "D", m.Result())
	m.Status = MatchScheduled
	assert.Equal(t, "", m.Result())

	e := &PlayerEvaluation{Technique: 8, Tactics: 7, Physical: 9, Attitude: 7}
	assert.Equal(t, "7.75", e.Average().String())
}
