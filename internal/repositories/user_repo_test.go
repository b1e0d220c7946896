package repositories

import (
	"context"
	"testing"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UserRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      UserRepository
	academyID uuid.UUID
	context   context.Context
}

func (suite *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewUserRepository(mock)
	suite.academyID = uuid.New()
	suite.context = context.Background()
}

func (suite *UserRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func (suite *UserRepoTestSuite) TestCreate_LowercasesEmail() {
	user := &models.User{
		ID:           uuid.New(),
		AcademyID:    suite.academyID,
		Email:        "Ana@Dojo.CL",
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "Rojas",
		Role:         models.RoleStudent,
		Status:       models.UserStatusActive,
		Phone:        stringPtr("+56911111111"),
	}

	suite.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(user.ID, user.AcademyID, "ana@dojo.cl", user.PasswordHash, user.FirstName, user.LastName,
			user.Role, user.Status, user.Phone, user.BirthDate).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Create(suite.context, user))
}

func (suite *UserRepoTestSuite) TestGetByEmail() {
	id := uuid.New()
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "academy_id", "email", "password_hash", "first_name", "last_name", "role",
		"status", "phone", "birth_date", "created_at", "updated_at"}).
		AddRow(id, suite.academyID, "coach@dojo.cl", "hash", "Luis", "Soto", models.RoleCoach,
			models.UserStatusActive, (*string)(nil), (*time.Time)(nil), now, now)

	suite.mock.ExpectQuery(`FROM users WHERE academy_id = \$1 AND email = \$2`).
		WithArgs(suite.academyID, "coach@dojo.cl").
		WillReturnRows(rows)

	user, err := suite.repo.GetByEmail(suite.context, suite.academyID, "COACH@dojo.cl")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, user.ID)
	assert.Equal(suite.T(), models.RoleCoach, user.Role)
	assert.Equal(suite.T(), "Luis Soto", user.FullName())
}

func (suite *UserRepoTestSuite) TestList_RoleAndSearch() {
	role := models.RoleStudent
	filters := &models.UserFilters{Role: &role, Search: "ana", Limit: 50}

	suite.mock.ExpectQuery(`AND role = \$2 AND \(first_name ILIKE \$3 OR last_name ILIKE \$3 OR email ILIKE \$3\) ORDER BY last_name, first_name LIMIT \$4 OFFSET \$5`).
		WithArgs(suite.academyID, role, "%ana%", 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	users, err := suite.repo.List(suite.context, suite.academyID, filters)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), users)
}

func (suite *UserRepoTestSuite) TestSuspendIfActive_AlreadySuspended() {
	id := uuid.New()
	suite.mock.ExpectExec(`AND status = 'ACTIVE'`).
		WithArgs(suite.academyID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	changed, err := suite.repo.SuspendIfActive(suite.context, suite.academyID, id)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), changed)
}

func (suite *UserRepoTestSuite) TestReactivateIfSuspended() {
	id := uuid.New()
	suite.mock.ExpectExec(`SET status = 'ACTIVE'.*AND status = 'SUSPENDED'`).
		WithArgs(suite.academyID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	changed, err := suite.repo.ReactivateIfSuspended(suite.context, suite.academyID, id)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), changed)
}
