package models

import (
	"time"

	"github.com/google/uuid"
)

type ChannelVisibility string

const (
	VisibilityAll   ChannelVisibility = "ALL"
	VisibilityStaff ChannelVisibility = "STAFF"
)

type Channel struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	AcademyID   uuid.UUID         `json:"academy_id" db:"academy_id"`
	Name        string            `json:"name" db:"name"`
	Description *string           `json:"description" db:"description"`
	Visibility  ChannelVisibility `json:"visibility" db:"visibility"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

type ContentKind string

const (
	ContentVideo    ContentKind = "VIDEO"
	ContentDocument ContentKind = "DOCUMENT"
	ContentLink     ContentKind = "LINK"
)

type Content struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	AcademyID   uuid.UUID   `json:"academy_id" db:"academy_id"`
	ChannelID   uuid.UUID   `json:"channel_id" db:"channel_id"`
	Title       string      `json:"title" db:"title"`
	Description *string     `json:"description" db:"description"`
	Kind        ContentKind `json:"kind" db:"kind"`
	URL         *string     `json:"url" db:"url"`
	ObjectKey   *string     `json:"-" db:"object_key"`
	BeltID      *uuid.UUID  `json:"belt_id" db:"belt_id"`
	Published   bool        `json:"published" db:"published"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

type ContentFilters struct {
	ChannelID     *uuid.UUID
	BeltID        *uuid.UUID
	PublishedOnly bool
	StudentView   bool
}
