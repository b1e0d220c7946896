package models

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceMethod string

const (
	AttendanceQR     AttendanceMethod = "QR"
	AttendanceManual AttendanceMethod = "MANUAL"
)

type Attendance struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	AcademyID   uuid.UUID        `json:"academy_id" db:"academy_id"`
	InstanceID  uuid.UUID        `json:"instance_id" db:"instance_id"`
	UserID      uuid.UUID        `json:"user_id" db:"user_id"`
	CheckedInAt time.Time        `json:"checked_in_at" db:"checked_in_at"`
	Method      AttendanceMethod `json:"method" db:"method"`
	RecordedBy  *uuid.UUID       `json:"recorded_by" db:"recorded_by"`
}

type AttendanceStats struct {
	UserID      uuid.UUID  `json:"user_id"`
	Last30Days  int        `json:"last_30_days"`
	Total       int        `json:"total"`
	LastCheckIn *time.Time `json:"last_check_in"`
}

// CheckInQR is returned to coaches to display at the door.
type CheckInQR struct {
	InstanceID uuid.UUID `json:"instance_id"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	PNG        []byte    `json:"png"`
}
