package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type EventRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Location    *string          `json:"location" validate:"omitempty,max=200"`
	StartsAt    time.Time        `json:"starts_at" validate:"required"`
	EndsAt      time.Time        `json:"ends_at" validate:"required"`
	Price       *decimal.Decimal `json:"price"`
	Capacity    *int             `json:"capacity" validate:"omitempty,gte=1"`
}

type EventService interface {
	CreateEvent(ctx context.Context, academyID uuid.UUID, req *EventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, academyID, id uuid.UUID) (*models.Event, error)
	UpdateEvent(ctx context.Context, academyID, id uuid.UUID, req *EventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, academyID, id uuid.UUID) error
	ListEvents(ctx context.Context, academyID uuid.UUID, upcomingOnly bool) ([]*models.Event, error)

	Register(ctx context.Context, academyID, eventID, userID uuid.UUID) (*models.EventRegistration, error)
	Unregister(ctx context.Context, academyID, eventID, userID uuid.UUID) error
	ListRegistrations(ctx context.Context, academyID, eventID uuid.UUID) ([]*models.EventRegistration, error)
}

type eventService struct {
	eventRepo repositories.EventRepository
	now       func() time.Time
}

func NewEventService(eventRepo repositories.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo, now: time.Now}
}

func applyEvent(e *models.Event, req *EventRequest) error {
	if !req.EndsAt.After(req.StartsAt) {
		return invalidField("ends_at", "ends_at must be after starts_at")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return invalidField("price", "price must not be negative")
	}
	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Location = req.Location
	e.StartsAt = req.StartsAt.UTC()
	e.EndsAt = req.EndsAt.UTC()
	e.Price = req.Price
	e.Capacity = req.Capacity
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, academyID uuid.UUID, req *EventRequest) (*models.Event, error) {
	now := s.now().UTC()
	event := &models.Event{ID: uuid.New(), AcademyID: academyID, CreatedAt: now, UpdatedAt: now}
	if err := applyEvent(event, req); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, academyID, id uuid.UUID) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("event", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, academyID, id uuid.UUID, req *EventRequest) (*models.Event, error) {
	event, err := s.GetEvent(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyEvent(event, req); err != nil {
		return nil, err
	}
	if event.Capacity != nil && *event.Capacity < event.Registered {
		return nil, invalidField("capacity", "capacity is below the %d current registrations", event.Registered)
	}
	event.UpdatedAt = s.now().UTC()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, notFound("event", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, academyID, id uuid.UUID) error {
	return notFound("event", s.eventRepo.Delete(ctx, academyID, id))
}

func (s *eventService) ListEvents(ctx context.Context, academyID uuid.UUID, upcomingOnly bool) ([]*models.Event, error) {
	var from *time.Time
	if upcomingOnly {
		now := s.now().UTC()
		from = &now
	}
	return s.eventRepo.List(ctx, academyID, from)
}

// Register checks capacity inside the INSERT statement.
func (s *eventService) Register(ctx context.Context, academyID, eventID, userID uuid.UUID) (*models.EventRegistration, error) {
	event, err := s.GetEvent(ctx, academyID, eventID)
	if err != nil {
		return nil, err
	}
	if !event.EndsAt.After(s.now()) {
		return nil, invalidField("event_id", "event has already ended")
	}
	registered, err := s.eventRepo.IsRegistered(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if registered {
		return nil, conflict("already registered")
	}

	reg := &models.EventRegistration{
		ID:           uuid.New(),
		AcademyID:    academyID,
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: s.now().UTC(),
	}
	ok, err := s.eventRepo.Register(ctx, reg)
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, conflict("already registered")
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	if !ok {
		return nil, conflict("event is full")
	}
	return reg, nil
}

func (s *eventService) Unregister(ctx context.Context, academyID, eventID, userID uuid.UUID) error {
	removed, err := s.eventRepo.Unregister(ctx, academyID, eventID, userID)
	if err != nil {
		return fmt.Errorf("unregister: %w", err)
	}
	if !removed {
		return fmt.Errorf("registration %w", ErrNotFound)
	}
	return nil
}

func (s *eventService) ListRegistrations(ctx context.Context, academyID, eventID uuid.UUID) ([]*models.EventRegistration, error) {
	if _, err := s.GetEvent(ctx, academyID, eventID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListRegistrations(ctx, academyID, eventID)
}
