package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"dojohub/internal/models"
)

type CurriculumServiceTestSuite struct {
	suite.Suite
	belts      *MockBeltRepository
	items      *MockCurriculumRepository
	promotions *MockPromotionRepository
	attendance *MockAttendanceRepository
	contents   *MockContentRepository
	users      *MockUserRepository
	service    CurriculumService
	academyID  uuid.UUID
	studentID  uuid.UUID
	coachID    uuid.UUID
	white      *models.Belt
	blue       *models.Belt
	purple     *models.Belt
}

func (suite *CurriculumServiceTestSuite) SetupTest() {
	suite.belts = new(MockBeltRepository)
	suite.items = new(MockCurriculumRepository)
	suite.promotions = new(MockPromotionRepository)
	suite.attendance = new(MockAttendanceRepository)
	suite.contents = new(MockContentRepository)
	suite.users = new(MockUserRepository)
	suite.belts.Test(suite.T())
	suite.items.Test(suite.T())
	suite.promotions.Test(suite.T())
	suite.attendance.Test(suite.T())
	suite.contents.Test(suite.T())
	suite.users.Test(suite.T())
	suite.service = NewCurriculumService(suite.belts, suite.items, suite.promotions, suite.attendance, suite.contents, suite.users)

	suite.academyID = uuid.New()
	suite.studentID = uuid.New()
	suite.coachID = uuid.New()
	suite.white = &models.Belt{ID: uuid.New(), AcademyID: suite.academyID, Discipline: "bjj", Name: "Blanco", RankOrder: 0, MaxStripes: 4}
	suite.blue = &models.Belt{ID: uuid.New(), AcademyID: suite.academyID, Discipline: "bjj", Name: "Azul", RankOrder: 1, MaxStripes: 4, MinClasses: 120}
	suite.purple = &models.Belt{ID: uuid.New(), AcademyID: suite.academyID, Discipline: "bjj", Name: "Morado", RankOrder: 2, MaxStripes: 4, MinClasses: 200}
}

func (suite *CurriculumServiceTestSuite) TearDownTest() {
	suite.belts.AssertExpectations(suite.T())
	suite.items.AssertExpectations(suite.T())
	suite.promotions.AssertExpectations(suite.T())
	suite.attendance.AssertExpectations(suite.T())
	suite.contents.AssertExpectations(suite.T())
	suite.users.AssertExpectations(suite.T())
}

func (suite *CurriculumServiceTestSuite) student(ctx context.Context) {
	suite.users.On("GetByID", ctx, suite.academyID, suite.studentID).Return(&models.User{
		ID: suite.studentID, AcademyID: suite.academyID, Role: models.RoleStudent, Status: models.UserStatusActive,
	}, nil)
}

func (suite *CurriculumServiceTestSuite) currentlyAt(ctx context.Context, belt *models.Belt, stripes int) *models.Promotion {
	latest := &models.Promotion{
		ID: uuid.New(), AcademyID: suite.academyID, UserID: suite.studentID, BeltID: belt.ID, Stripes: stripes,
		PromotedAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	suite.promotions.On("Latest", ctx, suite.academyID, suite.studentID).Return(latest, nil)
	suite.belts.On("GetByID", ctx, suite.academyID, belt.ID).Return(belt, nil)
	return latest
}

func (suite *CurriculumServiceTestSuite) TestCreateBelt_DuplicateRank() {
	ctx := context.Background()
	suite.belts.On("Create", ctx, mock.AnythingOfType("*models.Belt")).Return(&pgconn.PgError{Code: "23505"})

	_, err := suite.service.CreateBelt(ctx, suite.academyID, &BeltRequest{Discipline: "bjj", Name: "Azul", Color: "blue", RankOrder: 1})

	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *CurriculumServiceTestSuite) TestPromote_FirstPromotion() {
	ctx := context.Background()
	suite.student(ctx)
	suite.belts.On("GetByID", ctx, suite.academyID, suite.white.ID).Return(suite.white, nil)
	suite.promotions.On("Latest", ctx, suite.academyID, suite.studentID).Return(nil, pgx.ErrNoRows)
	suite.promotions.On("Create", ctx, mock.AnythingOfType("*models.Promotion")).Return(nil)

	p, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: suite.white.ID.String(),
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.white.ID, p.BeltID)
	assert.Equal(suite.T(), suite.coachID, p.PromotedBy)
}

func (suite *CurriculumServiceTestSuite) TestPromote_NextBelt() {
	ctx := context.Background()
	suite.student(ctx)
	suite.belts.On("GetByID", ctx, suite.academyID, suite.purple.ID).Return(suite.purple, nil)
	suite.currentlyAt(ctx, suite.blue, 4)
	suite.promotions.On("Create", ctx, mock.AnythingOfType("*models.Promotion")).Return(nil)

	_, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: suite.purple.ID.String(),
	})

	assert.NoError(suite.T(), err)
}

func (suite *CurriculumServiceTestSuite) TestPromote_RejectsDowngrade() {
	ctx := context.Background()
	suite.student(ctx)
	suite.belts.On("GetByID", ctx, suite.academyID, suite.white.ID).Return(suite.white, nil)
	suite.currentlyAt(ctx, suite.blue, 0)

	_, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: suite.white.ID.String(), Stripes: 4,
	})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "belt_id", fieldErr.Field)
	suite.promotions.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *CurriculumServiceTestSuite) TestPromote_SameBeltNeedsMoreStripes() {
	ctx := context.Background()
	suite.student(ctx)
	suite.currentlyAt(ctx, suite.blue, 2)

	_, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: suite.blue.ID.String(), Stripes: 2,
	})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "stripes", fieldErr.Field)
}

func (suite *CurriculumServiceTestSuite) TestPromote_StripeOnSameBelt() {
	ctx := context.Background()
	suite.student(ctx)
	suite.currentlyAt(ctx, suite.blue, 2)
	suite.promotions.On("Create", ctx, mock.AnythingOfType("*models.Promotion")).Return(nil)

	p, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: suite.blue.ID.String(), Stripes: 3,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, p.Stripes)
}

func (suite *CurriculumServiceTestSuite) TestPromote_TooManyStripes() {
	ctx := context.Background()
	suite.student(ctx)
	suite.belts.On("GetByID", ctx, suite.academyID, suite.white.ID).Return(suite.white, nil)

	_, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: suite.white.ID.String(), Stripes: 5,
	})

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *CurriculumServiceTestSuite) TestPromote_OtherDisciplineIsIndependent() {
	ctx := context.Background()
	judoWhite := &models.Belt{ID: uuid.New(), AcademyID: suite.academyID, Discipline: "judo", Name: "Blanco", RankOrder: 0}
	suite.student(ctx)
	suite.belts.On("GetByID", ctx, suite.academyID, judoWhite.ID).Return(judoWhite, nil)
	suite.currentlyAt(ctx, suite.purple, 1)
	suite.promotions.On("Create", ctx, mock.AnythingOfType("*models.Promotion")).Return(nil)

	_, err := suite.service.Promote(ctx, suite.academyID, suite.coachID, &PromoteRequest{
		UserID: suite.studentID.String(), BeltID: judoWhite.ID.String(),
	})

	assert.NoError(suite.T(), err)
}

func (suite *CurriculumServiceTestSuite) TestProgress_TowardsNextBelt() {
	ctx := context.Background()
	suite.users.On("GetByID", ctx, suite.academyID, suite.studentID).Return(&models.User{ID: suite.studentID}, nil)
	latest := suite.currentlyAt(ctx, suite.blue, 3)
	suite.attendance.On("CountForUserSince", ctx, suite.academyID, suite.studentID, latest.PromotedAt).Return(150, nil)
	suite.belts.On("Next", ctx, suite.academyID, "bjj", 1).Return(suite.purple, nil)
	items := []*models.CurriculumItem{{ID: uuid.New(), BeltID: suite.purple.ID, Title: "Berimbolo"}}
	suite.items.On("ListByBelt", ctx, suite.academyID, suite.purple.ID).Return(items, nil)

	progress, err := suite.service.Progress(ctx, suite.academyID, suite.studentID, "")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.blue, progress.CurrentBelt)
	assert.Equal(suite.T(), 3, progress.Stripes)
	assert.Equal(suite.T(), 150, progress.AttendancesSinceLast)
	assert.Equal(suite.T(), suite.purple, progress.NextBelt)
	assert.Equal(suite.T(), 200, progress.ClassesRequired)
	assert.Equal(suite.T(), 50, progress.ClassesRemaining)
	assert.Equal(suite.T(), items, progress.CurriculumForNextBelt)
}

func (suite *CurriculumServiceTestSuite) TestProgress_TopOfLadder() {
	ctx := context.Background()
	suite.users.On("GetByID", ctx, suite.academyID, suite.studentID).Return(&models.User{ID: suite.studentID}, nil)
	latest := suite.currentlyAt(ctx, suite.purple, 0)
	suite.attendance.On("CountForUserSince", ctx, suite.academyID, suite.studentID, latest.PromotedAt).Return(10, nil)
	suite.belts.On("Next", ctx, suite.academyID, "bjj", 2).Return(nil, pgx.ErrNoRows)

	progress, err := suite.service.Progress(ctx, suite.academyID, suite.studentID, "")

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), progress.NextBelt)
	assert.Equal(suite.T(), 0, progress.ClassesRemaining)
}

func (suite *CurriculumServiceTestSuite) TestProgress_NeverPromotedUsesDiscipline() {
	ctx := context.Background()
	suite.users.On("GetByID", ctx, suite.academyID, suite.studentID).Return(&models.User{ID: suite.studentID}, nil)
	suite.promotions.On("Latest", ctx, suite.academyID, suite.studentID).Return(nil, pgx.ErrNoRows)
	suite.attendance.On("CountForUserSince", ctx, suite.academyID, suite.studentID, time.Time{}).Return(12, nil)
	suite.belts.On("First", ctx, suite.academyID, "bjj").Return(suite.white, nil)
	suite.items.On("ListByBelt", ctx, suite.academyID, suite.white.ID).Return([]*models.CurriculumItem{}, nil)

	progress, err := suite.service.Progress(ctx, suite.academyID, suite.studentID, " bjj ")

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), progress.CurrentBelt)
	assert.Nil(suite.T(), progress.PromotedAt)
	assert.Equal(suite.T(), suite.white, progress.NextBelt)
}

func (suite *CurriculumServiceTestSuite) TestCreateItem_UnknownContent() {
	ctx := context.Background()
	contentID := uuid.New()
	raw := contentID.String()
	suite.belts.On("GetByID", ctx, suite.academyID, suite.blue.ID).Return(suite.blue, nil)
	suite.contents.On("GetByID", ctx, suite.academyID, contentID).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.CreateItem(ctx, suite.academyID, &CurriculumItemRequest{
		BeltID: suite.blue.ID.String(), Title: "Guard pass", ContentID: &raw,
	})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "content_id", fieldErr.Field)
}

func TestCurriculumServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurriculumServiceTestSuite))
}
