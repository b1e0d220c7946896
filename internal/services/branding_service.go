package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/caching"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

const brandingCacheTTL = 10 * time.Minute

type UpdateBrandingRequest struct {
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hexcolor,len=7"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hexcolor,len=7"`
	WelcomeMessage *string `json:"welcome_message" validate:"omitempty,max=500"`
}

type BrandingService interface {
	GetBranding(ctx context.Context, academyID uuid.UUID) (*models.Branding, error)
	GetPublicBranding(ctx context.Context, slug string) (*models.PublicBranding, error)
	UpdateBranding(ctx context.Context, academyID uuid.UUID, req *UpdateBrandingRequest) (*models.Branding, error)
	UploadLogo(ctx context.Context, academyID uuid.UUID, logo *Upload) (*models.Branding, error)
}

type brandingService struct {
	academyRepo  repositories.AcademyRepository
	brandingRepo repositories.BrandingRepository
	storage      StorageService
	cacheSvc     caching.CacheService
}

func NewBrandingService(academyRepo repositories.AcademyRepository, brandingRepo repositories.BrandingRepository,
	storage StorageService, cacheSvc caching.CacheService) BrandingService {
	return &brandingService{
		academyRepo:  academyRepo,
		brandingRepo: brandingRepo,
		storage:      storage,
		cacheSvc:     cacheSvc,
	}
}

func (s *brandingService) load(ctx context.Context, academyID uuid.UUID) (*models.Branding, error) {
	branding, err := s.brandingRepo.Get(ctx, academyID)
	if repositories.IsNotFound(err) {
		return defaultBranding(academyID, time.Now().UTC()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load branding: %w", err)
	}
	return branding, nil
}

func (s *brandingService) GetBranding(ctx context.Context, academyID uuid.UUID) (*models.Branding, error) {
	branding, err := s.load(ctx, academyID)
	if err != nil {
		return nil, err
	}
	branding.LogoURL = presign(ctx, s.storage, branding.LogoObject)
	return branding, nil
}

// GetPublicBranding serves the login page. Results are cached per slug.
func (s *brandingService) GetPublicBranding(ctx context.Context, slug string) (*models.PublicBranding, error) {
	if cached, err := s.cacheSvc.GetPublicBranding(ctx, slug); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", slug).Msg("branding cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	academy, err := s.academyRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound("academy", err)
	}
	branding, err := s.load(ctx, academy.ID)
	if err != nil {
		return nil, err
	}

	public := &models.PublicBranding{
		AcademyName:    academy.Name,
		Slug:           academy.Slug,
		Kind:           string(academy.Kind),
		PrimaryColor:   branding.PrimaryColor,
		SecondaryColor: branding.SecondaryColor,
		LogoURL:        presign(ctx, s.storage, branding.LogoObject),
		WelcomeMessage: branding.WelcomeMessage,
	}
	if err := s.cacheSvc.SetPublicBranding(ctx, slug, public, brandingCacheTTL); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", slug).Msg("branding cache write failed")
	}
	return public, nil
}

func (s *brandingService) UpdateBranding(ctx context.Context, academyID uuid.UUID, req *UpdateBrandingRequest) (*models.Branding, error) {
	branding, err := s.load(ctx, academyID)
	if err != nil {
		return nil, err
	}
	if req.PrimaryColor != nil {
		branding.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		branding.SecondaryColor = *req.SecondaryColor
	}
	if req.WelcomeMessage != nil {
		branding.WelcomeMessage = req.WelcomeMessage
	}
	return s.save(ctx, branding)
}

// UploadLogo stores the logo under academies/{id}/branding/logo.{ext}.
func (s *brandingService) UploadLogo(ctx context.Context, academyID uuid.UUID, logo *Upload) (*models.Branding, error) {
	ext, err := checkUpload("logo", logo, maxLogoSize, logoTypes)
	if err != nil {
		return nil, err
	}
	branding, err := s.load(ctx, academyID)
	if err != nil {
		return nil, err
	}

	key := academyObjectKey(academyID, "branding", "logo."+ext)
	if err := s.storage.Upload(ctx, key, logo.Reader, logo.Size, logo.ContentType); err != nil {
		return nil, err
	}
	if branding.LogoObject != nil && *branding.LogoObject != key {
		if err := s.storage.Delete(ctx, *branding.LogoObject); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("object", *branding.LogoObject).Msg("failed to remove previous logo")
		}
	}
	branding.LogoObject = &key
	return s.save(ctx, branding)
}

func (s *brandingService) save(ctx context.Context, branding *models.Branding) (*models.Branding, error) {
	branding.UpdatedAt = time.Now().UTC()
	if err := s.brandingRepo.Upsert(ctx, branding); err != nil {
		return nil, fmt.Errorf("save branding: %w", err)
	}
	s.invalidate(ctx, branding.AcademyID)
	branding.LogoURL = presign(ctx, s.storage, branding.LogoObject)
	return branding, nil
}

func (s *brandingService) invalidate(ctx context.Context, academyID uuid.UUID) {
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("branding invalidation skipped")
		return
	}
	if err := s.cacheSvc.DeletePublicBranding(ctx, academy.Slug); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("slug", academy.Slug).Msg("branding cache invalidation failed")
	}
}
