package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type MembershipServiceTestSuite struct {
	suite.Suite
	academies   *MockAcademyRepository
	users       *MockUserRepository
	plans       *MockPlanRepository
	memberships *MockMembershipRepository
	audit       *MockAuditLogsRepository
	service     *membershipService
	academy     *models.Academy
	student     *models.User
	plan        *models.Plan
	actorID     uuid.UUID
	now         time.Time
}

func (suite *MembershipServiceTestSuite) SetupTest() {
	suite.academies = new(MockAcademyRepository)
	suite.users = new(MockUserRepository)
	suite.plans = new(MockPlanRepository)
	suite.memberships = new(MockMembershipRepository)
	suite.audit = new(MockAuditLogsRepository)
	suite.now = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	suite.actorID = uuid.New()

	suite.academy = &models.Academy{ID: uuid.New(), Kind: models.AcademyKindAcademy, Status: models.AcademyStatusActive}
	suite.student = &models.User{ID: uuid.New(), AcademyID: suite.academy.ID, Role: models.RoleStudent, Status: models.UserStatusActive}
	suite.plan = &models.Plan{
		ID:        uuid.New(),
		AcademyID: suite.academy.ID,
		Name:      "Mensual",
		Price:     decimal.NewFromInt(45000),
		Interval:  models.IntervalMonthly,
		TrialDays: 10,
		Active:    true,
	}

	tx := &fakeTxManager{repos: &repositories.TxRepos{
		Academies:   suite.academies,
		Users:       suite.users,
		Plans:       suite.plans,
		Memberships: suite.memberships,
		AuditLogs:   suite.audit,
	}}
	svc := NewMembershipService(tx, suite.memberships, 7).(*membershipService)
	svc.now = func() time.Time { return suite.now }
	suite.service = svc
}

func (suite *MembershipServiceTestSuite) TearDownTest() {
	suite.academies.AssertExpectations(suite.T())
	suite.users.AssertExpectations(suite.T())
	suite.plans.AssertExpectations(suite.T())
	suite.memberships.AssertExpectations(suite.T())
	suite.audit.AssertExpectations(suite.T())
}

func (suite *MembershipServiceTestSuite) expectCreateLookups(ctx context.Context) {
	suite.academies.On("GetByID", ctx, suite.academy.ID).Return(suite.academy, nil)
	suite.users.On("GetByID", ctx, suite.academy.ID, suite.student.ID).Return(suite.student, nil)
	suite.plans.On("GetByID", ctx, suite.academy.ID, suite.plan.ID).Return(suite.plan, nil)
}

func (suite *MembershipServiceTestSuite) createRequest() *CreateMembershipRequest {
	return &CreateMembershipRequest{UserID: suite.student.ID.String(), PlanID: suite.plan.ID.String()}
}

func (suite *MembershipServiceTestSuite) TestCreateMembership_StartsToday() {
	ctx := context.Background()
	suite.expectCreateLookups(ctx)
	suite.memberships.On("FindLiveByUser", ctx, suite.academy.ID, suite.student.ID).Return(nil, pgx.ErrNoRows)
	suite.memberships.On("Create", ctx, mock.AnythingOfType("*models.Membership")).Return(nil)
	suite.audit.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	m, err := suite.service.CreateMembership(ctx, suite.academy.ID, suite.actorID, suite.createRequest())

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MembershipActive, m.Status)
	assert.Equal(suite.T(), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), m.StartDate)
	assert.Equal(suite.T(), m.StartDate, m.NextBillingDate)
	assert.Nil(suite.T(), m.TrialEndsAt)
}

func (suite *MembershipServiceTestSuite) TestCreateMembership_TrialUsesPlanDays() {
	ctx := context.Background()
	req := suite.createRequest()
	req.Trial = true
	req.StartDate = "2026-11-01"
	suite.expectCreateLookups(ctx)
	suite.memberships.On("FindLiveByUser", ctx, suite.academy.ID, suite.student.ID).Return(nil, pgx.ErrNoRows)
	suite.memberships.On("Create", ctx, mock.AnythingOfType("*models.Membership")).Return(nil)
	suite.audit.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	m, err := suite.service.CreateMembership(ctx, suite.academy.ID, suite.actorID, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MembershipTrial, m.Status)
	want := time.Date(2026, 11, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(suite.T(), want, *m.TrialEndsAt)
	assert.Equal(suite.T(), want, m.NextBillingDate)
}

func (suite *MembershipServiceTestSuite) TestCreateMembership_LiveMembershipConflicts() {
	ctx := context.Background()
	suite.expectCreateLookups(ctx)
	live := &models.Membership{ID: uuid.New(), Status: models.MembershipPastDue}
	suite.memberships.On("FindLiveByUser", ctx, suite.academy.ID, suite.student.ID).Return(live, nil)

	_, err := suite.service.CreateMembership(ctx, suite.academy.ID, suite.actorID, suite.createRequest())

	assert.ErrorIs(suite.T(), err, ErrConflict)
	assert.Contains(suite.T(), err.Error(), "PAST_DUE")
}

func (suite *MembershipServiceTestSuite) TestCreateMembership_InactivePlan() {
	ctx := context.Background()
	suite.plan.Active = false
	suite.expectCreateLookups(ctx)

	_, err := suite.service.CreateMembership(ctx, suite.academy.ID, suite.actorID, suite.createRequest())

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "plan_id", fieldErr.Field)
}

func (suite *MembershipServiceTestSuite) TestCreateMembership_InvalidUserID() {
	_, err := suite.service.CreateMembership(context.Background(), suite.academy.ID, suite.actorID,
		&CreateMembershipRequest{UserID: "nope", PlanID: suite.plan.ID.String()})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "user_id", fieldErr.Field)
}

func (suite *MembershipServiceTestSuite) membership(status models.MembershipStatus) *models.Membership {
	return &models.Membership{
		ID:        uuid.New(),
		AcademyID: suite.academy.ID,
		UserID:    suite.student.ID,
		PlanID:    suite.plan.ID,
		Status:    status,
	}
}

func (suite *MembershipServiceTestSuite) TestChangeStatus_Cancel() {
	ctx := context.Background()
	m := suite.membership(models.MembershipActive)
	suite.memberships.On("GetByIDForUpdate", ctx, suite.academy.ID, m.ID).Return(m, nil)
	suite.memberships.On("Update", ctx, m).Return(nil)
	suite.audit.On("Create", ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.OldValues["status"] == "ACTIVE" && l.NewValues["status"] == "CANCELLED"
	})).Return(nil)

	result, err := suite.service.CancelMembership(ctx, suite.academy.ID, suite.actorID, m.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MembershipCancelled, result.Status)
	assert.Equal(suite.T(), suite.now, *result.CancelledAt)
}

func (suite *MembershipServiceTestSuite) TestChangeStatus_SameStatusIsNoop() {
	ctx := context.Background()
	m := suite.membership(models.MembershipPastDue)
	suite.memberships.On("GetByIDForUpdate", ctx, suite.academy.ID, m.ID).Return(m, nil)

	result, err := suite.service.ChangeStatus(ctx, suite.academy.ID, suite.actorID, m.ID, models.MembershipPastDue)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MembershipPastDue, result.Status)
	suite.memberships.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *MembershipServiceTestSuite) TestChangeStatus_TerminalCannotReopen() {
	ctx := context.Background()
	m := suite.membership(models.MembershipExpired)
	suite.memberships.On("GetByIDForUpdate", ctx, suite.academy.ID, m.ID).Return(m, nil)

	_, err := suite.service.ChangeStatus(ctx, suite.academy.ID, suite.actorID, m.ID, models.MembershipActive)

	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *MembershipServiceTestSuite) TestChangeStatus_ActivateWithOtherActive() {
	ctx := context.Background()
	m := suite.membership(models.MembershipTrial)
	suite.memberships.On("GetByIDForUpdate", ctx, suite.academy.ID, m.ID).Return(m, nil)
	suite.memberships.On("HasOtherActive", ctx, suite.academy.ID, m.UserID, m.ID).Return(true, nil)

	_, err := suite.service.ChangeStatus(ctx, suite.academy.ID, suite.actorID, m.ID, models.MembershipActive)

	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *MembershipServiceTestSuite) TestChangeStatus_UnknownStatus() {
	_, err := suite.service.ChangeStatus(context.Background(), suite.academy.ID, suite.actorID, uuid.New(), "PAUSED")

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *MembershipServiceTestSuite) TestChangeStatus_NotFound() {
	ctx := context.Background()
	id := uuid.New()
	suite.memberships.On("GetByIDForUpdate", ctx, suite.academy.ID, id).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.ChangeStatus(ctx, suite.academy.ID, suite.actorID, id, models.MembershipCancelled)

	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *MembershipServiceTestSuite) TestListMemberships_UnknownStatus() {
	status := models.MembershipStatus("FROZEN")

	_, err := suite.service.ListMemberships(context.Background(), suite.academy.ID, &models.MembershipFilters{Status: &status})

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func TestLocalDate(t *testing.T) {
	santiago := time.FixedZone("CLT", -3*60*60)
	late := time.Date(2026, 10, 20, 2, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), localDate(late, santiago))
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), localDate(late, time.UTC))
}
