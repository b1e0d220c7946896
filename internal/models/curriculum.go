package models

import (
	"time"

	"github.com/google/uuid"
)

type Belt struct {
	ID         uuid.UUID `json:"id" db:"id"`
	AcademyID  uuid.UUID `json:"academy_id" db:"academy_id"`
	Discipline string    `json:"discipline" db:"discipline"`
	Name       string    `json:"name" db:"name"`
	Color      string    `json:"color" db:"color"`
	RankOrder  int       `json:"rank_order" db:"rank_order"`
	MaxStripes int       `json:"max_stripes" db:"max_stripes"`
	MinClasses int       `json:"min_classes" db:"min_classes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type CurriculumItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	AcademyID   uuid.UUID  `json:"academy_id" db:"academy_id"`
	BeltID      uuid.UUID  `json:"belt_id" db:"belt_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	ContentID   *uuid.UUID `json:"content_id" db:"content_id"`
	Position    int        `json:"position" db:"position"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type Promotion struct {
	ID         uuid.UUID `json:"id" db:"id"`
	AcademyID  uuid.UUID `json:"academy_id" db:"academy_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	BeltID     uuid.UUID `json:"belt_id" db:"belt_id"`
	Stripes    int       `json:"stripes" db:"stripes"`
	PromotedBy uuid.UUID `json:"promoted_by" db:"promoted_by"`
	PromotedAt time.Time `json:"promoted_at" db:"promoted_at"`
	Notes      *string   `json:"notes" db:"notes"`
}

// Progress summarizes where a student stands in the belt ladder.
type Progress struct {
	UserID                uuid.UUID         `json:"user_id"`
	CurrentBelt           *Belt             `json:"current_belt"`
	Stripes               int               `json:"stripes"`
	PromotedAt            *time.Time        `json:"promoted_at"`
	AttendancesSinceLast  int               `json:"attendances_since_promotion"`
	NextBelt              *Belt             `json:"next_belt"`
	ClassesRequired       int               `json:"classes_required"`
	ClassesRemaining      int               `json:"classes_remaining"`
	CurriculumForNextBelt []*CurriculumItem `json:"curriculum_for_next_belt"`
}
