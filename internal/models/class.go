package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Class struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	AcademyID   uuid.UUID  `json:"academy_id" db:"academy_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Discipline  string     `json:"discipline" db:"discipline"`
	CoachID     *uuid.UUID `json:"coach_id" db:"coach_id"`
	Capacity    *int       `json:"capacity" db:"capacity"`
	Level       *string    `json:"level" db:"level"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// WeeklySlot is the recurring part shared by class and training schedules.
type WeeklySlot struct {
	Weekday         int        `json:"weekday" db:"weekday"` // 0 = Sunday
	StartTime       string     `json:"start_time" db:"start_time"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	ValidFrom       time.Time  `json:"valid_from" db:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until" db:"valid_until"`
	Active          bool       `json:"active" db:"active"`
}

// Occurrence returns start and end of the slot on date, in loc.
func (w WeeklySlot) Occurrence(date time.Time, loc *time.Location) (time.Time, time.Time, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(w.StartTime, "%02d:%02d", &hh, &mm); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time %q: %w", w.StartTime, err)
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, loc)
	return start, start.Add(time.Duration(w.DurationMinutes) * time.Minute), nil
}

// Window clips [from, to] to the slot validity. ok is false when nothing is
// left.
func (w WeeklySlot) Window(from, to time.Time) (time.Time, time.Time, bool) {
	start := from
	if w.ValidFrom.After(start) {
		start = w.ValidFrom
	}
	end := to
	if w.ValidUntil != nil && w.ValidUntil.Before(end) {
		end = *w.ValidUntil
	}
	return start, end, !end.Before(start)
}

type ClassSchedule struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AcademyID uuid.UUID `json:"academy_id" db:"academy_id"`
	ClassID   uuid.UUID `json:"class_id" db:"class_id"`
	WeeklySlot
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type InstanceStatus string

const (
	InstanceScheduled InstanceStatus = "SCHEDULED"
	InstanceCancelled InstanceStatus = "CANCELLED"
	InstanceCompleted InstanceStatus = "COMPLETED"
)

type ClassInstance struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	AcademyID  uuid.UUID      `json:"academy_id" db:"academy_id"`
	ClassID    uuid.UUID      `json:"class_id" db:"class_id"`
	ScheduleID *uuid.UUID     `json:"schedule_id" db:"schedule_id"`
	Date       time.Time      `json:"date" db:"date"`
	StartsAt   time.Time      `json:"starts_at" db:"starts_at"`
	EndsAt     time.Time      `json:"ends_at" db:"ends_at"`
	Status     InstanceStatus `json:"status" db:"status"`
	ClassName  string         `json:"class_name,omitempty" db:"-"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

type InstanceFilters struct {
	From    time.Time
	To      time.Time
	ClassID *uuid.UUID
	Status  *InstanceStatus
}
