package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"dojohub/internal/models"
)

type ClassServiceTestSuite struct {
	suite.Suite
	classes   *MockClassRepository
	schedules *MockClassScheduleRepository
	instances *MockClassInstanceRepository
	users     *MockUserRepository
	academies *MockAcademyRepository
	service   ClassService
	academyID uuid.UUID
}

func (suite *ClassServiceTestSuite) SetupTest() {
	suite.classes = new(MockClassRepository)
	suite.schedules = new(MockClassScheduleRepository)
	suite.instances = new(MockClassInstanceRepository)
	suite.users = new(MockUserRepository)
	suite.academies = new(MockAcademyRepository)
	suite.academyID = uuid.New()
	suite.service = NewClassService(suite.classes, suite.schedules, suite.instances, suite.users, suite.academies)
}

func (suite *ClassServiceTestSuite) TearDownTest() {
	suite.classes.AssertExpectations(suite.T())
	suite.schedules.AssertExpectations(suite.T())
	suite.instances.AssertExpectations(suite.T())
	suite.users.AssertExpectations(suite.T())
	suite.academies.AssertExpectations(suite.T())
}

func (suite *ClassServiceTestSuite) TestCreateClass_WithCoach() {
	ctx := context.Background()
	coach := &models.User{ID: uuid.New(), AcademyID: suite.academyID, Role: models.RoleCoach}
	coachID := coach.ID.String()
	suite.users.On("GetByID", ctx, suite.academyID, coach.ID).Return(coach, nil)
	suite.classes.On("Create", ctx, mock.AnythingOfType("*models.Class")).Return(nil)

	class, err := suite.service.CreateClass(ctx, suite.academyID, &ClassRequest{Name: "Fundamentos", Discipline: "bjj", CoachID: &coachID})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), coach.ID, *class.CoachID)
}

func (suite *ClassServiceTestSuite) TestCreateClass_CoachMustBeStaff() {
	ctx := context.Background()
	student := &models.User{ID: uuid.New(), AcademyID: suite.academyID, Role: models.RoleStudent}
	studentID := student.ID.String()
	suite.users.On("GetByID", ctx, suite.academyID, student.ID).Return(student, nil)

	_, err := suite.service.CreateClass(ctx, suite.academyID, &ClassRequest{Name: "Fundamentos", Discipline: "bjj", CoachID: &studentID})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "coach_id", fieldErr.Field)
}

func (suite *ClassServiceTestSuite) TestCreateSchedule() {
	ctx := context.Background()
	class := &models.Class{ID: uuid.New(), AcademyID: suite.academyID}
	weekday := 2
	suite.classes.On("GetByID", ctx, suite.academyID, class.ID).Return(class, nil)
	suite.schedules.On("Create", ctx, mock.AnythingOfType("*models.ClassSchedule")).Return(nil)

	schedule, err := suite.service.CreateSchedule(ctx, suite.academyID, &ScheduleRequest{
		ClassID: class.ID.String(), Weekday: &weekday, StartTime: "19:30", DurationMinutes: 90, ValidFrom: "2026-10-01",
	})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, schedule.Weekday)
	assert.True(suite.T(), schedule.Active)
	assert.Equal(suite.T(), time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), schedule.ValidFrom)
}

func (suite *ClassServiceTestSuite) TestCreateSchedule_UnknownClass() {
	ctx := context.Background()
	classID := uuid.New()
	weekday := 1
	suite.classes.On("GetByID", ctx, suite.academyID, classID).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.CreateSchedule(ctx, suite.academyID, &ScheduleRequest{
		ClassID: classID.String(), Weekday: &weekday, StartTime: "19:30", DurationMinutes: 60, ValidFrom: "2026-10-01",
	})

	var fieldErr *FieldError
	assert.True(suite.T(), errors.As(err, &fieldErr))
	assert.Equal(suite.T(), "class_id", fieldErr.Field)
}

func TestParseSlot(t *testing.T) {
	weekday := 3
	bad := 7
	until := "2026-09-01"
	tests := []struct {
		name      string
		weekday   *int
		startTime string
		until     *string
		field     string
	}{
		{"missing weekday", nil, "19:00", nil, "weekday"},
		{"weekday out of range", &bad, "19:00", nil, "weekday"},
		{"bad start time", &weekday, "25:61", nil, "start_time"},
		{"until before from", &weekday, "19:00", &until, "valid_until"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSlot(tt.weekday, tt.startTime, 60, "2026-10-01", tt.until, nil)
			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func (suite *ClassServiceTestSuite) TestCreateInstance_UsesAcademyDate() {
	ctx := context.Background()
	class := &models.Class{ID: uuid.New(), AcademyID: suite.academyID, Name: "Open mat"}
	academy := &models.Academy{ID: suite.academyID}
	startsAt := time.Date(2026, 10, 24, 10, 0, 0, 0, time.UTC)
	suite.classes.On("GetByID", ctx, suite.academyID, class.ID).Return(class, nil)
	suite.academies.On("GetByID", ctx, suite.academyID).Return(academy, nil)
	suite.instances.On("Create", ctx, mock.AnythingOfType("*models.ClassInstance")).Return(nil)

	inst, err := suite.service.CreateInstance(ctx, suite.academyID, &InstanceRequest{
		ClassID: class.ID.String(), StartsAt: startsAt, EndsAt: startsAt.Add(2 * time.Hour),
	})

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), inst.ScheduleID)
	assert.Equal(suite.T(), time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), inst.Date)
	assert.Equal(suite.T(), models.InstanceScheduled, inst.Status)
}

func (suite *ClassServiceTestSuite) TestCancelInstance() {
	ctx := context.Background()
	inst := &models.ClassInstance{ID: uuid.New(), AcademyID: suite.academyID, Status: models.InstanceScheduled}
	suite.instances.On("GetByID", ctx, suite.academyID, inst.ID).Return(inst, nil)
	suite.instances.On("UpdateStatus", ctx, suite.academyID, inst.ID, models.InstanceCancelled).Return(nil)

	result, err := suite.service.CancelInstance(ctx, suite.academyID, inst.ID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.InstanceCancelled, result.Status)
}

func (suite *ClassServiceTestSuite) TestCancelInstance_Completed() {
	ctx := context.Background()
	inst := &models.ClassInstance{ID: uuid.New(), AcademyID: suite.academyID, Status: models.InstanceCompleted}
	suite.instances.On("GetByID", ctx, suite.academyID, inst.ID).Return(inst, nil)

	_, err := suite.service.CancelInstance(ctx, suite.academyID, inst.ID)

	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *ClassServiceTestSuite) TestListInstances_StudentsSeeScheduledOnly() {
	ctx := context.Background()
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	suite.instances.On("List", ctx, suite.academyID, mock.MatchedBy(func(f *models.InstanceFilters) bool {
		return f.Status != nil && *f.Status == models.InstanceScheduled && f.To.Equal(from.AddDate(0, 0, 7))
	})).Return([]*models.ClassInstance{}, nil)

	_, err := suite.service.ListInstances(ctx, suite.academyID, models.RoleStudent, &models.InstanceFilters{From: from})

	assert.NoError(suite.T(), err)
}

func (suite *ClassServiceTestSuite) TestListInstances_RangeTooLong() {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.service.ListInstances(context.Background(), suite.academyID, models.RoleAdmin,
		&models.InstanceFilters{From: from, To: from.AddDate(0, 4, 0)})

	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func TestClassServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClassServiceTestSuite))
}
