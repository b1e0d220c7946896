package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
	"dojohub/internal/validation"
)

const (
	defaultPrimaryColor   = "#1F2937"
	defaultSecondaryColor = "#F59E0B"
)

type RegisterAcademyRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Slug           string `json:"slug" validate:"required,slug"`
	Kind           string `json:"kind" validate:"omitempty,oneof=ACADEMY CLUB"`
	Timezone       string `json:"timezone" validate:"omitempty,timezone"`
	Currency       string `json:"currency" validate:"omitempty,iso4217"`
	AdminEmail     string `json:"admin_email" validate:"required,email"`
	AdminPassword  string `json:"admin_password" validate:"required,min=8,max=72"`
	AdminFirstName string `json:"admin_first_name" validate:"required,max=80"`
	AdminLastName  string `json:"admin_last_name" validate:"max=80"`
}

type UpdateAcademyRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Timezone *string `json:"timezone" validate:"omitempty,timezone"`
	Currency *string `json:"currency" validate:"omitempty,iso4217"`
}

// RegisteredAcademy is the result of a sign-up.
type RegisteredAcademy struct {
	Academy *models.Academy
	Admin   *models.User
}

type AcademyService interface {
	RegisterAcademy(ctx context.Context, req *RegisterAcademyRequest) (*RegisteredAcademy, error)
	GetAcademy(ctx context.Context, academyID uuid.UUID) (*models.Academy, error)
	UpdateAcademy(ctx context.Context, academyID, actorID uuid.UUID, req *UpdateAcademyRequest) (*models.Academy, error)
	// RequireClub returns ErrForbidden unless the academy is a CLUB.
	RequireClub(ctx context.Context, academyID uuid.UUID) (*models.Academy, error)
}

type academyService struct {
	txManager   repositories.TxManager
	academyRepo repositories.AcademyRepository
	trialDays   int
	currency    string
	now         func() time.Time
}

func NewAcademyService(txManager repositories.TxManager, academyRepo repositories.AcademyRepository, trialDays int, defaultCurrency string) AcademyService {
	return &academyService{
		txManager:   txManager,
		academyRepo: academyRepo,
		trialDays:   trialDays,
		currency:    defaultCurrency,
		now:         time.Now,
	}
}

// RegisterAcademy creates the academy in TRIAL, its first admin and default
// branding in one transaction.
func (s *academyService) RegisterAcademy(ctx context.Context, req *RegisterAcademyRequest) (*RegisteredAcademy, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !validation.IsSlug(slug) {
		return nil, invalidField("slug", "slug must be 3-40 lowercase letters, digits or hyphens")
	}
	kind := models.AcademyKind(strings.ToUpper(req.Kind))
	if kind == "" {
		kind = models.AcademyKindAcademy
	}
	if kind != models.AcademyKindAcademy && kind != models.AcademyKindClub {
		return nil, invalidField("kind", "kind must be one of: ACADEMY CLUB")
	}

	passwordHash, err := HashPassword(req.AdminPassword)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	trialEnds := now.AddDate(0, 0, s.trialDays)
	academy := &models.Academy{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Kind:        kind,
		Status:      models.AcademyStatusTrial,
		TrialEndsAt: &trialEnds,
		Timezone:    valueOr(req.Timezone, "UTC"),
		Currency:    strings.ToUpper(valueOr(req.Currency, s.currency)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	admin := &models.User{
		ID:           uuid.New(),
		AcademyID:    academy.ID,
		Email:        req.AdminEmail,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.AdminFirstName),
		LastName:     strings.TrimSpace(req.AdminLastName),
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.WithinTx(ctx, func(r *repositories.TxRepos) error {
		if err := r.Academies.Create(ctx, academy); err != nil {
			if repositories.IsUniqueViolation(err) {
				return conflict("slug %q is already taken", slug)
			}
			return fmt.Errorf("create academy: %w", err)
		}
		if err := r.Users.Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		if err := r.Branding.Upsert(ctx, defaultBranding(academy.ID, now)); err != nil {
			return fmt.Errorf("create branding: %w", err)
		}
		return writeAudit(ctx, r.AuditLogs, academy.ID, "academies", academy.ID.String(), models.ActionInsert, &admin.ID,
			nil, models.JSONB{"name": academy.Name, "slug": academy.Slug, "kind": string(academy.Kind)})
	})
	if err != nil {
		return nil, err
	}

	return &RegisteredAcademy{Academy: academy, Admin: admin}, nil
}

func (s *academyService) GetAcademy(ctx context.Context, academyID uuid.UUID) (*models.Academy, error) {
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}
	return academy, nil
}

func (s *academyService) UpdateAcademy(ctx context.Context, academyID, actorID uuid.UUID, req *UpdateAcademyRequest) (*models.Academy, error) {
	academy, err := s.GetAcademy(ctx, academyID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		academy.Name = strings.TrimSpace(*req.Name)
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, invalidField("timezone", "timezone must be an IANA timezone")
		}
		academy.Timezone = *req.Timezone
	}
	if req.Currency != nil {
		academy.Currency = strings.ToUpper(*req.Currency)
	}
	academy.UpdatedAt = s.now().UTC()

	if err := s.academyRepo.Update(ctx, academy); err != nil {
		return nil, notFound("academy", err)
	}
	return academy, nil
}

func (s *academyService) RequireClub(ctx context.Context, academyID uuid.UUID) (*models.Academy, error) {
	academy, err := s.GetAcademy(ctx, academyID)
	if err != nil {
		return nil, err
	}
	if !academy.IsClub() {
		return nil, forbidden("club features are only available to clubs")
	}
	return academy, nil
}

func defaultBranding(academyID uuid.UUID, now time.Time) *models.Branding {
	return &models.Branding{
		AcademyID:      academyID,
		PrimaryColor:   defaultPrimaryColor,
		SecondaryColor: defaultSecondaryColor,
		UpdatedAt:      now,
	}
}

func valueOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
