package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"dojohub/internal/models"
)

type EventServiceTestSuite struct {
	suite.Suite
	events    *MockEventRepository
	service   *eventService
	academyID uuid.UUID
	userID    uuid.UUID
	now       time.Time
}

func (suite *EventServiceTestSuite) SetupTest() {
	suite.events = new(MockEventRepository)
	suite.academyID = uuid.New()
	suite.userID = uuid.New()
	suite.now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	svc := NewEventService(suite.events).(*eventService)
	svc.now = func() time.Time { return suite.now }
	suite.service = svc
}

func (suite *EventServiceTestSuite) TearDownTest() {
	suite.events.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) event() *models.Event {
	return &models.Event{
		ID:        uuid.New(),
		AcademyID: suite.academyID,
		Title:     "Seminario de guardia",
		StartsAt:  suite.now.Add(48 * time.Hour),
		EndsAt:    suite.now.Add(51 * time.Hour),
	}
}

func (suite *EventServiceTestSuite) TestCreateEvent_EndMustFollowStart() {
	_, err := suite.service.CreateEvent(context.Background(), suite.academyID, &EventRequest{
		Title:    "Open mat",
		StartsAt: suite.now,
		EndsAt:   suite.now,
	})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "ends_at", fieldErr.Field)
}

func (suite *EventServiceTestSuite) TestUpdateEvent_CapacityBelowRegistrations() {
	ctx := context.Background()
	event := suite.event()
	event.Registered = 12
	capacity := 10
	suite.events.On("GetByID", ctx, suite.academyID, event.ID).Return(event, nil)

	_, err := suite.service.UpdateEvent(ctx, suite.academyID, event.ID, &EventRequest{
		Title: event.Title, StartsAt: event.StartsAt, EndsAt: event.EndsAt, Capacity: &capacity,
	})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "capacity", fieldErr.Field)
}

func (suite *EventServiceTestSuite) TestRegister() {
	ctx := context.Background()
	event := suite.event()
	suite.events.On("GetByID", ctx, suite.academyID, event.ID).Return(event, nil)
	suite.events.On("IsRegistered", ctx, event.ID, suite.userID).Return(false, nil)
	suite.events.On("Register", ctx, mock.MatchedBy(func(r *models.EventRegistration) bool {
		return r.EventID == event.ID && r.UserID == suite.userID && r.RegisteredAt.Equal(suite.now)
	})).Return(true, nil)

	reg, err := suite.service.Register(ctx, suite.academyID, event.ID, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.academyID, reg.AcademyID)
}

func (suite *EventServiceTestSuite) TestRegister_Full() {
	ctx := context.Background()
	event := suite.event()
	suite.events.On("GetByID", ctx, suite.academyID, event.ID).Return(event, nil)
	suite.events.On("IsRegistered", ctx, event.ID, suite.userID).Return(false, nil)
	suite.events.On("Register", ctx, mock.AnythingOfType("*models.EventRegistration")).Return(false, nil)

	_, err := suite.service.Register(ctx, suite.academyID, event.ID, suite.userID)

	assert.ErrorIs(suite.T(), err, ErrConflict)
	assert.Contains(suite.T(), err.Error(), "event is full")
}

func (suite *EventServiceTestSuite) TestRegister_AlreadyRegistered() {
	ctx := context.Background()
	event := suite.event()
	suite.events.On("GetByID", ctx, suite.academyID, event.ID).Return(event, nil)
	suite.events.On("IsRegistered", ctx, event.ID, suite.userID).Return(true, nil)

	_, err := suite.service.Register(ctx, suite.academyID, event.ID, suite.userID)

	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *EventServiceTestSuite) TestRegister_ConcurrentDuplicate() {
	ctx := context.Background()
	event := suite.event()
	suite.events.On("GetByID", ctx, suite.academyID, event.ID).Return(event, nil)
	suite.events.On("IsRegistered", ctx, event.ID, suite.userID).Return(false, nil)
	suite.events.On("Register", ctx, mock.AnythingOfType("*models.EventRegistration")).Return(false, &pgconn.PgError{Code: "23505"})

	_, err := suite.service.Register(ctx, suite.academyID, event.ID, suite.userID)

	assert.ErrorIs(suite.T(), err, ErrConflict)
	assert.Contains(suite.T(), err.Error(), "already registered")
}

func (suite *EventServiceTestSuite) TestRegister_EventEnded() {
	ctx := context.Background()
	event := suite.event()
	event.StartsAt = suite.now.Add(-3 * time.Hour)
	event.EndsAt = suite.now.Add(-time.Hour)
	suite.events.On("GetByID", ctx, suite.academyID, event.ID).Return(event, nil)

	_, err := suite.service.Register(ctx, suite.academyID, event.ID, suite.userID)

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *EventServiceTestSuite) TestUnregister_NotRegistered() {
	ctx := context.Background()
	eventID := uuid.New()
	suite.events.On("Unregister", ctx, suite.academyID, eventID, suite.userID).Return(false, nil)

	err := suite.service.Unregister(ctx, suite.academyID, eventID, suite.userID)

	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *EventServiceTestSuite) TestListEvents_UpcomingFromNow() {
	ctx := context.Background()
	suite.events.On("List", ctx, suite.academyID, mock.MatchedBy(func(from *time.Time) bool {
		return from != nil && from.Equal(suite.now)
	})).Return([]*models.Event{suite.event()}, nil)

	events, err := suite.service.ListEvents(ctx, suite.academyID, true)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), events, 1)
}

func TestEventServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EventServiceTestSuite))
}
