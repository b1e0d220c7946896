package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type ChannelRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Visibility  string  `json:"visibility" validate:"omitempty,oneof=ALL STAFF"`
}

type ContentRequest struct {
	ChannelID   string  `json:"channel_id" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Kind        string  `json:"kind" validate:"required,oneof=VIDEO DOCUMENT LINK"`
	URL         *string `json:"url" validate:"omitempty,url"`
	BeltID      *string `json:"belt_id" validate:"omitempty,uuid"`
	Published   bool    `json:"published"`
}

// ContentService manages the content library. Students only ever see
// published content in channels visible to ALL.
type ContentService interface {
	CreateChannel(ctx context.Context, academyID uuid.UUID, req *ChannelRequest) (*models.Channel, error)
	GetChannel(ctx context.Context, academyID, id uuid.UUID, role models.Role) (*models.Channel, error)
	UpdateChannel(ctx context.Context, academyID, id uuid.UUID, req *ChannelRequest) (*models.Channel, error)
	DeleteChannel(ctx context.Context, academyID, id uuid.UUID) error
	ListChannels(ctx context.Context, academyID uuid.UUID, role models.Role) ([]*models.Channel, error)

	CreateContent(ctx context.Context, academyID uuid.UUID, req *ContentRequest) (*models.Content, error)
	GetContent(ctx context.Context, academyID, id uuid.UUID, role models.Role) (*models.Content, error)
	UpdateContent(ctx context.Context, academyID, id uuid.UUID, req *ContentRequest) (*models.Content, error)
	UploadDocument(ctx context.Context, academyID, id uuid.UUID, file *Upload) (*models.Content, error)
	DeleteContent(ctx context.Context, academyID, id uuid.UUID) error
	ListContents(ctx context.Context, academyID uuid.UUID, role models.Role, filters *models.ContentFilters) ([]*models.Content, error)
}

type contentService struct {
	channelRepo repositories.ChannelRepository
	contentRepo repositories.ContentRepository
	beltRepo    repositories.BeltRepository
	storage     StorageService
}

func NewContentService(
	channelRepo repositories.ChannelRepository,
	contentRepo repositories.ContentRepository,
	beltRepo repositories.BeltRepository,
	storage StorageService,
) ContentService {
	return &contentService{
		channelRepo: channelRepo,
		contentRepo: contentRepo,
		beltRepo:    beltRepo,
		storage:     storage,
	}
}

func applyChannel(ch *models.Channel, req *ChannelRequest) {
	ch.Name = strings.TrimSpace(req.Name)
	ch.Description = req.Description
	if req.Visibility != "" {
		ch.Visibility = models.ChannelVisibility(req.Visibility)
	}
	if ch.Visibility == "" {
		ch.Visibility = models.VisibilityAll
	}
}

func (s *contentService) CreateChannel(ctx context.Context, academyID uuid.UUID, req *ChannelRequest) (*models.Channel, error) {
	ch := &models.Channel{ID: uuid.New(), AcademyID: academyID, CreatedAt: time.Now().UTC()}
	applyChannel(ch, req)
	if err := s.channelRepo.Create(ctx, ch); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("channel %q already exists", ch.Name)
		}
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

func (s *contentService) GetChannel(ctx context.Context, academyID, id uuid.UUID, role models.Role) (*models.Channel, error) {
	ch, err := s.channelRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("channel", err)
	}
	if role == models.RoleStudent && ch.Visibility != models.VisibilityAll {
		return nil, fmt.Errorf("channel %w", ErrNotFound)
	}
	return ch, nil
}

func (s *contentService) UpdateChannel(ctx context.Context, academyID, id uuid.UUID, req *ChannelRequest) (*models.Channel, error) {
	ch, err := s.GetChannel(ctx, academyID, id, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	applyChannel(ch, req)
	if err := s.channelRepo.Update(ctx, ch); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("channel %q already exists", ch.Name)
		}
		return nil, notFound("channel", err)
	}
	return ch, nil
}

func (s *contentService) DeleteChannel(ctx context.Context, academyID, id uuid.UUID) error {
	contents, err := s.contentRepo.List(ctx, academyID, &models.ContentFilters{ChannelID: &id})
	if err != nil {
		return err
	}
	if len(contents) > 0 {
		return conflict("channel still has %d contents", len(contents))
	}
	return notFound("channel", s.channelRepo.Delete(ctx, academyID, id))
}

func (s *contentService) ListChannels(ctx context.Context, academyID uuid.UUID, role models.Role) ([]*models.Channel, error) {
	var visibility *models.ChannelVisibility
	if role == models.RoleStudent {
		all := models.VisibilityAll
		visibility = &all
	}
	return s.channelRepo.List(ctx, academyID, visibility)
}

func (s *contentService) applyContent(ctx context.Context, academyID uuid.UUID, c *models.Content, req *ContentRequest) error {
	kind := models.ContentKind(req.Kind)
	switch kind {
	case models.ContentVideo, models.ContentLink:
		if req.URL == nil || strings.TrimSpace(*req.URL) == "" {
			return invalidField("url", "url is required for %s content", kind)
		}
		c.URL = req.URL
	case models.ContentDocument:
		if req.URL != nil && *req.URL != "" {
			return invalidField("url", "documents are uploaded, not linked")
		}
		c.URL = nil
	default:
		return invalidField("kind", "kind must be one of: VIDEO DOCUMENT LINK")
	}

	channelID, err := common.ValidateUUID(req.ChannelID, "channel_id")
	if err != nil {
		return invalidField("channel_id", "%s", err.Error())
	}
	if _, err := s.channelRepo.GetByID(ctx, academyID, channelID); err != nil {
		if repositories.IsNotFound(err) {
			return invalidField("channel_id", "channel_id does not exist")
		}
		return err
	}
	c.BeltID = nil
	if req.BeltID != nil && *req.BeltID != "" {
		beltID, err := common.ValidateUUID(*req.BeltID, "belt_id")
		if err != nil {
			return invalidField("belt_id", "%s", err.Error())
		}
		if _, err := s.beltRepo.GetByID(ctx, academyID, beltID); err != nil {
			if repositories.IsNotFound(err) {
				return invalidField("belt_id", "belt_id does not exist")
			}
			return err
		}
		c.BeltID = &beltID
	}

	if kind != models.ContentDocument {
		c.ObjectKey = nil
	}
	c.ChannelID = channelID
	c.Title = strings.TrimSpace(req.Title)
	c.Description = req.Description
	c.Kind = kind
	c.Published = req.Published
	return nil
}

func (s *contentService) CreateContent(ctx context.Context, academyID uuid.UUID, req *ContentRequest) (*models.Content, error) {
	now := time.Now().UTC()
	c := &models.Content{ID: uuid.New(), AcademyID: academyID, CreatedAt: now, UpdatedAt: now}
	if err := s.applyContent(ctx, academyID, c, req); err != nil {
		return nil, err
	}
	if err := s.contentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return c, nil
}

// withDocumentURL fills URL with a presigned link for uploaded documents.
func (s *contentService) withDocumentURL(ctx context.Context, c *models.Content) *models.Content {
	if c.Kind == models.ContentDocument {
		c.URL = presign(ctx, s.storage, c.ObjectKey)
	}
	return c
}

func (s *contentService) GetContent(ctx context.Context, academyID, id uuid.UUID, role models.Role) (*models.Content, error) {
	c, err := s.contentRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("content", err)
	}
	if role == models.RoleStudent {
		if !c.Published {
			return nil, fmt.Errorf("content %w", ErrNotFound)
		}
		if _, err := s.GetChannel(ctx, academyID, c.ChannelID, role); err != nil {
			return nil, fmt.Errorf("content %w", ErrNotFound)
		}
	}
	return s.withDocumentURL(ctx, c), nil
}

func (s *contentService) UpdateContent(ctx context.Context, academyID, id uuid.UUID, req *ContentRequest) (*models.Content, error) {
	c, err := s.contentRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("content", err)
	}
	previous := c.ObjectKey
	if err := s.applyContent(ctx, academyID, c, req); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.contentRepo.Update(ctx, c); err != nil {
		return nil, notFound("content", err)
	}
	if previous != nil && c.ObjectKey == nil {
		s.removeObject(ctx, *previous)
	}
	return s.withDocumentURL(ctx, c), nil
}

// UploadDocument stores the file under
// academies/{id}/content/{content}/document.{ext}.
func (s *contentService) UploadDocument(ctx context.Context, academyID, id uuid.UUID, file *Upload) (*models.Content, error) {
	c, err := s.contentRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("content", err)
	}
	if c.Kind != models.ContentDocument {
		return nil, invalidField("kind", "only DOCUMENT content accepts uploads")
	}
	ext, err := checkUpload("file", file, maxContentSize, documentTypes)
	if err != nil {
		return nil, err
	}

	previous := c.ObjectKey
	key := academyObjectKey(academyID, "content", c.ID.String(), "document."+ext)
	if err := s.storage.Upload(ctx, key, file.Reader, file.Size, file.ContentType); err != nil {
		return nil, err
	}
	c.ObjectKey = &key
	c.UpdatedAt = time.Now().UTC()
	if err := s.contentRepo.Update(ctx, c); err != nil {
		return nil, notFound("content", err)
	}
	if previous != nil && *previous != key {
		s.removeObject(ctx, *previous)
	}
	return s.withDocumentURL(ctx, c), nil
}

func (s *contentService) DeleteContent(ctx context.Context, academyID, id uuid.UUID) error {
	c, err := s.contentRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return notFound("content", err)
	}
	if err := s.contentRepo.Delete(ctx, academyID, id); err != nil {
		return notFound("content", err)
	}
	if c.ObjectKey != nil {
		s.removeObject(ctx, *c.ObjectKey)
	}
	return nil
}

func (s *contentService) ListContents(ctx context.Context, academyID uuid.UUID, role models.Role, filters *models.ContentFilters) ([]*models.Content, error) {
	if filters == nil {
		filters = &models.ContentFilters{}
	}
	filters.StudentView = role == models.RoleStudent
	contents, err := s.contentRepo.List(ctx, academyID, filters)
	if err != nil {
		return nil, err
	}
	for _, c := range contents {
		s.withDocumentURL(ctx, c)
	}
	return contents, nil
}

func (s *contentService) removeObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("object", key).Msg("failed to remove object")
	}
}
