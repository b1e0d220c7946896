package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	AcademyID   uuid.UUID        `json:"academy_id" db:"academy_id"`
	Title       string           `json:"title" db:"title"`
	Description *string          `json:"description" db:"description"`
	Location    *string          `json:"location" db:"location"`
	StartsAt    time.Time        `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time        `json:"ends_at" db:"ends_at"`
	Price       *decimal.Decimal `json:"price" db:"price"`
	Capacity    *int             `json:"capacity" db:"capacity"`
	Registered  int              `json:"registered" db:"-"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

type EventRegistration struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AcademyID    uuid.UUID `json:"academy_id" db:"academy_id"`
	EventID      uuid.UUID `json:"event_id" db:"event_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}
