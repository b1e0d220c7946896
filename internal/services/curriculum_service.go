package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/common"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type BeltRequest struct {
	Discipline string `json:"discipline" validate:"required,max=60"`
	Name       string `json:"name" validate:"required,max=60"`
	Color      string `json:"color" validate:"required,max=30"`
	RankOrder  int    `json:"rank_order" validate:"gte=0,lte=100"`
	MaxStripes int    `json:"max_stripes" validate:"gte=0,lte=10"`
	MinClasses int    `json:"min_classes" validate:"gte=0,lte=10000"`
}

type CurriculumItemRequest struct {
	BeltID      string  `json:"belt_id" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ContentID   *string `json:"content_id" validate:"omitempty,uuid"`
	Position    int     `json:"position" validate:"gte=0"`
}

type PromoteRequest struct {
	UserID  string  `json:"user_id" validate:"required,uuid"`
	BeltID  string  `json:"belt_id" validate:"required,uuid"`
	Stripes int     `json:"stripes" validate:"gte=0,lte=10"`
	Notes   *string `json:"notes" validate:"omitempty,max=1000"`
}

type CurriculumService interface {
	CreateBelt(ctx context.Context, academyID uuid.UUID, req *BeltRequest) (*models.Belt, error)
	GetBelt(ctx context.Context, academyID, id uuid.UUID) (*models.Belt, error)
	UpdateBelt(ctx context.Context, academyID, id uuid.UUID, req *BeltRequest) (*models.Belt, error)
	DeleteBelt(ctx context.Context, academyID, id uuid.UUID) error
	ListBelts(ctx context.Context, academyID uuid.UUID, discipline string) ([]*models.Belt, error)

	CreateItem(ctx context.Context, academyID uuid.UUID, req *CurriculumItemRequest) (*models.CurriculumItem, error)
	GetItem(ctx context.Context, academyID, id uuid.UUID) (*models.CurriculumItem, error)
	UpdateItem(ctx context.Context, academyID, id uuid.UUID, req *CurriculumItemRequest) (*models.CurriculumItem, error)
	DeleteItem(ctx context.Context, academyID, id uuid.UUID) error
	ListItems(ctx context.Context, academyID, beltID uuid.UUID) ([]*models.CurriculumItem, error)

	Promote(ctx context.Context, academyID, actorID uuid.UUID, req *PromoteRequest) (*models.Promotion, error)
	ListPromotions(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Promotion, error)
	// Progress reports the belt ladder position of userID. discipline picks
	// the ladder for students never promoted.
	Progress(ctx context.Context, academyID, userID uuid.UUID, discipline string) (*models.Progress, error)
}

type curriculumService struct {
	beltRepo       repositories.BeltRepository
	itemRepo       repositories.CurriculumRepository
	promotionRepo  repositories.PromotionRepository
	attendanceRepo repositories.AttendanceRepository
	contentRepo    repositories.ContentRepository
	userRepo       repositories.UserRepository
	now            func() time.Time
}

func NewCurriculumService(
	beltRepo repositories.BeltRepository,
	itemRepo repositories.CurriculumRepository,
	promotionRepo repositories.PromotionRepository,
	attendanceRepo repositories.AttendanceRepository,
	contentRepo repositories.ContentRepository,
	userRepo repositories.UserRepository,
) CurriculumService {
	return &curriculumService{
		beltRepo:       beltRepo,
		itemRepo:       itemRepo,
		promotionRepo:  promotionRepo,
		attendanceRepo: attendanceRepo,
		contentRepo:    contentRepo,
		userRepo:       userRepo,
		now:            time.Now,
	}
}

func applyBelt(b *models.Belt, req *BeltRequest) {
	b.Discipline = strings.TrimSpace(req.Discipline)
	b.Name = strings.TrimSpace(req.Name)
	b.Color = strings.TrimSpace(req.Color)
	b.RankOrder = req.RankOrder
	b.MaxStripes = req.MaxStripes
	b.MinClasses = req.MinClasses
}

func (s *curriculumService) CreateBelt(ctx context.Context, academyID uuid.UUID, req *BeltRequest) (*models.Belt, error) {
	belt := &models.Belt{ID: uuid.New(), AcademyID: academyID, CreatedAt: s.now().UTC()}
	applyBelt(belt, req)
	if err := s.beltRepo.Create(ctx, belt); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("rank %d is already used in %s", belt.RankOrder, belt.Discipline)
		}
		return nil, fmt.Errorf("create belt: %w", err)
	}
	return belt, nil
}

func (s *curriculumService) GetBelt(ctx context.Context, academyID, id uuid.UUID) (*models.Belt, error) {
	belt, err := s.beltRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("belt", err)
	}
	return belt, nil
}

func (s *curriculumService) UpdateBelt(ctx context.Context, academyID, id uuid.UUID, req *BeltRequest) (*models.Belt, error) {
	belt, err := s.GetBelt(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	applyBelt(belt, req)
	if err := s.beltRepo.Update(ctx, belt); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("rank %d is already used in %s", belt.RankOrder, belt.Discipline)
		}
		return nil, notFound("belt", err)
	}
	return belt, nil
}

func (s *curriculumService) DeleteBelt(ctx context.Context, academyID, id uuid.UUID) error {
	return notFound("belt", s.beltRepo.Delete(ctx, academyID, id))
}

func (s *curriculumService) ListBelts(ctx context.Context, academyID uuid.UUID, discipline string) ([]*models.Belt, error) {
	return s.beltRepo.List(ctx, academyID, strings.TrimSpace(discipline))
}

func (s *curriculumService) applyItem(ctx context.Context, academyID uuid.UUID, item *models.CurriculumItem, req *CurriculumItemRequest) error {
	beltID, err := common.ValidateUUID(req.BeltID, "belt_id")
	if err != nil {
		return invalidField("belt_id", "%s", err.Error())
	}
	if _, err := s.beltRepo.GetByID(ctx, academyID, beltID); err != nil {
		if repositories.IsNotFound(err) {
			return invalidField("belt_id", "belt_id does not exist")
		}
		return err
	}
	item.ContentID = nil
	if req.ContentID != nil && *req.ContentID != "" {
		contentID, err := common.ValidateUUID(*req.ContentID, "content_id")
		if err != nil {
			return invalidField("content_id", "%s", err.Error())
		}
		if _, err := s.contentRepo.GetByID(ctx, academyID, contentID); err != nil {
			if repositories.IsNotFound(err) {
				return invalidField("content_id", "content_id does not exist")
			}
			return err
		}
		item.ContentID = &contentID
	}
	item.BeltID = beltID
	item.Title = strings.TrimSpace(req.Title)
	item.Description = req.Description
	item.Position = req.Position
	return nil
}

func (s *curriculumService) CreateItem(ctx context.Context, academyID uuid.UUID, req *CurriculumItemRequest) (*models.CurriculumItem, error) {
	item := &models.CurriculumItem{ID: uuid.New(), AcademyID: academyID, CreatedAt: s.now().UTC()}
	if err := s.applyItem(ctx, academyID, item, req); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create curriculum item: %w", err)
	}
	return item, nil
}

func (s *curriculumService) GetItem(ctx context.Context, academyID, id uuid.UUID) (*models.CurriculumItem, error) {
	item, err := s.itemRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("curriculum item", err)
	}
	return item, nil
}

func (s *curriculumService) UpdateItem(ctx context.Context, academyID, id uuid.UUID, req *CurriculumItemRequest) (*models.CurriculumItem, error) {
	item, err := s.GetItem(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyItem(ctx, academyID, item, req); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, notFound("curriculum item", err)
	}
	return item, nil
}

func (s *curriculumService) DeleteItem(ctx context.Context, academyID, id uuid.UUID) error {
	return notFound("curriculum item", s.itemRepo.Delete(ctx, academyID, id))
}

func (s *curriculumService) ListItems(ctx context.Context, academyID, beltID uuid.UUID) ([]*models.CurriculumItem, error) {
	return s.itemRepo.ListByBelt(ctx, academyID, beltID)
}

// currentRank returns the latest promotion and its belt, or nils when the
// student was never promoted.
func (s *curriculumService) currentRank(ctx context.Context, academyID, userID uuid.UUID) (*models.Promotion, *models.Belt, error) {
	latest, err := s.promotionRepo.Latest(ctx, academyID, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	belt, err := s.beltRepo.GetByID(ctx, academyID, latest.BeltID)
	if err != nil {
		return nil, nil, notFound("belt", err)
	}
	return latest, belt, nil
}

// Promote never moves a student down the ladder. Staying on the same belt
// requires more stripes than before.
func (s *curriculumService) Promote(ctx context.Context, academyID, actorID uuid.UUID, req *PromoteRequest) (*models.Promotion, error) {
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return nil, invalidField("user_id", "%s", err.Error())
	}
	beltID, err := common.ValidateUUID(req.BeltID, "belt_id")
	if err != nil {
		return nil, invalidField("belt_id", "%s", err.Error())
	}
	if _, err := loadStudent(ctx, s.userRepo, academyID, userID, "user_id"); err != nil {
		return nil, err
	}
	belt, err := s.beltRepo.GetByID(ctx, academyID, beltID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, invalidField("belt_id", "belt_id does not exist")
		}
		return nil, err
	}
	if req.Stripes < 0 || req.Stripes > belt.MaxStripes {
		return nil, invalidField("stripes", "stripes must be between 0 and %d", belt.MaxStripes)
	}

	latest, current, err := s.currentRank(ctx, academyID, userID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.Discipline == belt.Discipline {
		switch {
		case belt.RankOrder < current.RankOrder:
			return nil, invalidField("belt_id", "cannot promote to a lower belt than %s", current.Name)
		case belt.ID == current.ID && req.Stripes <= latest.Stripes:
			return nil, invalidField("stripes", "stripes must exceed the current %d", latest.Stripes)
		}
	}

	promotion := &models.Promotion{
		ID:         uuid.New(),
		AcademyID:  academyID,
		UserID:     userID,
		BeltID:     beltID,
		Stripes:    req.Stripes,
		PromotedBy: actorID,
		PromotedAt: s.now().UTC(),
		Notes:      req.Notes,
	}
	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return promotion, nil
}

func (s *curriculumService) ListPromotions(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Promotion, error) {
	return s.promotionRepo.ListForUser(ctx, academyID, userID)
}

func (s *curriculumService) Progress(ctx context.Context, academyID, userID uuid.UUID, discipline string) (*models.Progress, error) {
	if _, err := s.userRepo.GetByID(ctx, academyID, userID); err != nil {
		return nil, notFound("user", err)
	}
	latest, current, err := s.currentRank(ctx, academyID, userID)
	if err != nil {
		return nil, err
	}

	progress := &models.Progress{UserID: userID, CurrentBelt: current}
	var since time.Time
	if latest != nil {
		progress.Stripes = latest.Stripes
		progress.PromotedAt = &latest.PromotedAt
		since = latest.PromotedAt
	}
	attended, err := s.attendanceRepo.CountForUserSince(ctx, academyID, userID, since)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	progress.AttendancesSinceLast = attended

	var next *models.Belt
	switch {
	case current != nil:
		next, err = s.beltRepo.Next(ctx, academyID, current.Discipline, current.RankOrder)
	case strings.TrimSpace(discipline) != "":
		next, err = s.beltRepo.First(ctx, academyID, strings.TrimSpace(discipline))
	}
	if err != nil && !repositories.IsNotFound(err) {
		return nil, fmt.Errorf("next belt: %w", err)
	}
	if next == nil {
		return progress, nil
	}

	progress.NextBelt = next
	progress.ClassesRequired = next.MinClasses
	if remaining := next.MinClasses - attended; remaining > 0 {
		progress.ClassesRemaining = remaining
	}
	items, err := s.itemRepo.ListByBelt(ctx, academyID, next.ID)
	if err != nil {
		return nil, fmt.Errorf("list curriculum: %w", err)
	}
	progress.CurriculumForNextBelt = items
	return progress, nil
}
