package models

import (
	"time"

	"github.com/google/uuid"
)

type AcademyKind string

const (
	AcademyKindAcademy AcademyKind = "ACADEMY"
	AcademyKindClub    AcademyKind = "CLUB"
)

type AcademyStatus string

const (
	AcademyStatusTrial     AcademyStatus = "TRIAL"
	AcademyStatusActive    AcademyStatus = "ACTIVE"
	AcademyStatusSuspended AcademyStatus = "SUSPENDED"
)

// Academy is the tenant. Every other record carries its ID.
type Academy struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Slug        string        `json:"slug" db:"slug"`
	Kind        AcademyKind   `json:"kind" db:"kind"`
	Status      AcademyStatus `json:"status" db:"status"`
	TrialEndsAt *time.Time    `json:"trial_ends_at" db:"trial_ends_at"`
	Timezone    string        `json:"timezone" db:"timezone"`
	Currency    string        `json:"currency" db:"currency"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// IsClub reports whether club features (matches, evaluations, training,
// expenses) are enabled.
func (a *Academy) IsClub() bool {
	return a.Kind == AcademyKindClub
}

// Location resolves the academy timezone, falling back to UTC.
func (a *Academy) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Branding struct {
	AcademyID      uuid.UUID `json:"academy_id" db:"academy_id"`
	PrimaryColor   string    `json:"primary_color" db:"primary_color"`
	SecondaryColor string    `json:"secondary_color" db:"secondary_color"`
	LogoObject     *string   `json:"-" db:"logo_object"`
	LogoURL        *string   `json:"logo_url,omitempty" db:"-"`
	WelcomeMessage *string   `json:"welcome_message" db:"welcome_message"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PublicBranding is what unauthenticated clients see on the login page.
type PublicBranding struct {
	AcademyName    string  `json:"academy_name"`
	Slug           string  `json:"slug"`
	Kind           string  `json:"kind"`
	PrimaryColor   string  `json:"primary_color"`
	SecondaryColor string  `json:"secondary_color"`
	LogoURL        *string `json:"logo_url,omitempty"`
	WelcomeMessage *string `json:"welcome_message,omitempty"`
}
