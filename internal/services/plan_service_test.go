package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"dojohub/internal/models"
)

type PlanServiceTestSuite struct {
	suite.Suite
	plans     *MockPlanRepository
	academies *MockAcademyRepository
	service   PlanService
	academy   *models.Academy
}

func (suite *PlanServiceTestSuite) SetupTest() {
	suite.plans = new(MockPlanRepository)
	suite.academies = new(MockAcademyRepository)
	suite.service = NewPlanService(suite.plans, suite.academies)
	suite.academy = &models.Academy{ID: uuid.New(), Currency: "CLP"}
}

func (suite *PlanServiceTestSuite) TearDownTest() {
	suite.plans.AssertExpectations(suite.T())
	suite.academies.AssertExpectations(suite.T())
}

func (suite *PlanServiceTestSuite) TestCreatePlan_UsesAcademyCurrency() {
	ctx := context.Background()
	suite.academies.On("GetByID", ctx, suite.academy.ID).Return(suite.academy, nil)
	suite.plans.On("Create", ctx, mock.AnythingOfType("*models.Plan")).Return(nil)

	plan, err := suite.service.CreatePlan(ctx, suite.academy.ID, &PlanRequest{
		Name:     " Trimestral ",
		Price:    decimal.RequireFromString("120000.499"),
		Interval: "QUARTERLY",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Trimestral", plan.Name)
	assert.Equal(suite.T(), "CLP", plan.Currency)
	assert.Equal(suite.T(), "120000.50", plan.Price.StringFixed(2))
	assert.True(suite.T(), plan.Active)
}

func (suite *PlanServiceTestSuite) TestCreatePlan_PriceMustBePositive() {
	ctx := context.Background()
	suite.academies.On("GetByID", ctx, suite.academy.ID).Return(suite.academy, nil)

	_, err := suite.service.CreatePlan(ctx, suite.academy.ID, &PlanRequest{Name: "Gratis", Price: decimal.Zero, Interval: "MONTHLY"})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "price", fieldErr.Field)
}

func (suite *PlanServiceTestSuite) TestCreatePlan_DuplicateName() {
	ctx := context.Background()
	suite.academies.On("GetByID", ctx, suite.academy.ID).Return(suite.academy, nil)
	suite.plans.On("Create", ctx, mock.AnythingOfType("*models.Plan")).Return(&pgconn.PgError{Code: "23505"})

	_, err := suite.service.CreatePlan(ctx, suite.academy.ID, &PlanRequest{Name: "Mensual", Price: decimal.NewFromInt(1), Interval: "MONTHLY"})

	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *PlanServiceTestSuite) TestDeletePlan_WithLiveMemberships() {
	ctx := context.Background()
	plan := &models.Plan{ID: uuid.New(), AcademyID: suite.academy.ID}
	suite.plans.On("GetByID", ctx, suite.academy.ID, plan.ID).Return(plan, nil)
	suite.plans.On("CountLiveMemberships", ctx, suite.academy.ID, plan.ID).Return(3, nil)

	err := suite.service.DeletePlan(ctx, suite.academy.ID, plan.ID)

	assert.ErrorIs(suite.T(), err, ErrConflict)
	suite.plans.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PlanServiceTestSuite) TestDeletePlan() {
	ctx := context.Background()
	plan := &models.Plan{ID: uuid.New(), AcademyID: suite.academy.ID}
	suite.plans.On("GetByID", ctx, suite.academy.ID, plan.ID).Return(plan, nil)
	suite.plans.On("CountLiveMemberships", ctx, suite.academy.ID, plan.ID).Return(0, nil)
	suite.plans.On("Delete", ctx, suite.academy.ID, plan.ID).Return(nil)

	assert.NoError(suite.T(), suite.service.DeletePlan(ctx, suite.academy.ID, plan.ID))
}

func TestPlanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PlanServiceTestSuite))
}
