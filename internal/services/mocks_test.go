package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

// fakeTxManager runs fn directly against the mocked repositories.
type fakeTxManager struct {
	repos *repositories.TxRepos
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(r *repositories.TxRepos) error) error {
	return fn(f.repos)
}

type MockAcademyRepository struct {
	mock.Mock
}

func (m *MockAcademyRepository) Create(ctx context.Context, academy *models.Academy) error {
	args := m.Called(ctx, academy)
	return args.Error(0)
}

func (m *MockAcademyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Academy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Academy), args.Error(1)
}

func (m *MockAcademyRepository) GetBySlug(ctx context.Context, slug string) (*models.Academy, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Academy), args.Error(1)
}

func (m *MockAcademyRepository) Update(ctx context.Context, academy *models.Academy) error {
	args := m.Called(ctx, academy)
	return args.Error(0)
}

func (m *MockAcademyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AcademyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAcademyRepository) ListByStatus(ctx context.Context, statuses ...models.AcademyStatus) ([]*models.Academy, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Academy), args.Error(1)
}

func (m *MockAcademyRepository) SuspendExpiredTrials(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockBrandingRepository struct {
	mock.Mock
}

func (m *MockBrandingRepository) Get(ctx context.Context, academyID uuid.UUID) (*models.Branding, error) {
	args := m.Called(ctx, academyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branding), args.Error(1)
}

func (m *MockBrandingRepository) Upsert(ctx context.Context, branding *models.Branding) error {
	args := m.Called(ctx, branding)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, academyID uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, academyID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, academyID, id uuid.UUID, status models.UserStatus) error {
	args := m.Called(ctx, academyID, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, academyID, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, academyID, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, academyID uuid.UUID, filters *models.UserFilters) ([]*models.User, error) {
	args := m.Called(ctx, academyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) SuspendIfActive(ctx context.Context, academyID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, academyID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ReactivateIfSuspended(ctx context.Context, academyID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, academyID, id)
	return args.Bool(0), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Plan, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockPlanRepository) List(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.Plan, error) {
	args := m.Called(ctx, academyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) CountLiveMemberships(ctx context.Context, academyID, planID uuid.UUID) (int, error) {
	args := m.Called(ctx, academyID, planID)
	return args.Int(0), args.Error(1)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetByIDForUpdate(ctx context.Context, academyID, id uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) List(ctx context.Context, academyID uuid.UUID, filters *models.MembershipFilters) ([]*models.Membership, error) {
	args := m.Called(ctx, academyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindLiveByUser(ctx context.Context, academyID, userID uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, academyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) HasOtherActive(ctx context.Context, academyID, userID, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, academyID, userID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]*models.OverdueMembership, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OverdueMembership), args.Error(1)
}

func (m *MockMembershipRepository) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) CountByStatus(ctx context.Context, academyID uuid.UUID) (map[models.MembershipStatus]int, error) {
	args := m.Called(ctx, academyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.MembershipStatus]int), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, academyID, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIDAnyAcademy(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByProviderRef(ctx context.Context, method models.PaymentMethod, ref string) (*models.Payment, error) {
	args := m.Called(ctx, method, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, academyID uuid.UUID, filters *models.PaymentFilters) ([]*models.Payment, error) {
	args := m.Called(ctx, academyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumPaidBetween(ctx context.Context, academyID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, academyID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Count(ctx context.Context, academyID uuid.UUID, method models.PaymentMethod, status models.PaymentStatus) (int, error) {
	args := m.Called(ctx, academyID, method, status)
	return args.Int(0), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, academyID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, academyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) GetByTableAndRecord(ctx context.Context, academyID uuid.UUID, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, academyID, tableName, recordID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) GetTableNames(ctx context.Context, academyID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, academyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockClassScheduleRepository struct {
	mock.Mock
}

func (m *MockClassScheduleRepository) Create(ctx context.Context, s *models.ClassSchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockClassScheduleRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.ClassSchedule, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassSchedule), args.Error(1)
}

func (m *MockClassScheduleRepository) Update(ctx context.Context, s *models.ClassSchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockClassScheduleRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockClassScheduleRepository) List(ctx context.Context, academyID uuid.UUID, classID *uuid.UUID) ([]*models.ClassSchedule, error) {
	args := m.Called(ctx, academyID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClassSchedule), args.Error(1)
}

func (m *MockClassScheduleRepository) ListActive(ctx context.Context, academyID uuid.UUID) ([]*models.ClassSchedule, error) {
	args := m.Called(ctx, academyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClassSchedule), args.Error(1)
}

type MockClassInstanceRepository struct {
	mock.Mock
}

func (m *MockClassInstanceRepository) Create(ctx context.Context, inst *models.ClassInstance) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockClassInstanceRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.ClassInstance, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassInstance), args.Error(1)
}

func (m *MockClassInstanceRepository) List(ctx context.Context, academyID uuid.UUID, filters *models.InstanceFilters) ([]*models.ClassInstance, error) {
	args := m.Called(ctx, academyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClassInstance), args.Error(1)
}

func (m *MockClassInstanceRepository) UpdateStatus(ctx context.Context, academyID, id uuid.UUID, status models.InstanceStatus) error {
	args := m.Called(ctx, academyID, id, status)
	return args.Error(0)
}

func (m *MockClassInstanceRepository) ExistsForScheduleDate(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error) {
	args := m.Called(ctx, scheduleID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockClassInstanceRepository) InsertFromSchedule(ctx context.Context, inst *models.ClassInstance) (bool, error) {
	args := m.Called(ctx, inst)
	return args.Bool(0), args.Error(1)
}

func (m *MockClassInstanceRepository) CountScheduledBetween(ctx context.Context, academyID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, academyID, from, to)
	return args.Int(0), args.Error(1)
}

type MockTrainingRepository struct {
	mock.Mock
}

func (m *MockTrainingRepository) CreateSchedule(ctx context.Context, s *models.TrainingSchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrainingRepository) GetSchedule(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSchedule, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainingSchedule), args.Error(1)
}

func (m *MockTrainingRepository) UpdateSchedule(ctx context.Context, s *models.TrainingSchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrainingRepository) DeleteSchedule(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockTrainingRepository) ListSchedules(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.TrainingSchedule, error) {
	args := m.Called(ctx, academyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrainingSchedule), args.Error(1)
}

func (m *MockTrainingRepository) CreateSession(ctx context.Context, s *models.TrainingSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrainingRepository) GetSession(ctx context.Context, academyID, id uuid.UUID) (*models.TrainingSession, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainingSession), args.Error(1)
}

func (m *MockTrainingRepository) UpdateSession(ctx context.Context, s *models.TrainingSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrainingRepository) DeleteSession(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockTrainingRepository) ListSessions(ctx context.Context, academyID uuid.UUID, from, to time.Time, category string) ([]*models.TrainingSession, error) {
	args := m.Called(ctx, academyID, from, to, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrainingSession), args.Error(1)
}

func (m *MockTrainingRepository) SessionExists(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error) {
	args := m.Called(ctx, scheduleID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrainingRepository) InsertSessionFromSchedule(ctx context.Context, s *models.TrainingSession) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttendanceRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockAttendanceRepository) ListForInstance(ctx context.Context, academyID, instanceID uuid.UUID) ([]*models.Attendance, error) {
	args := m.Called(ctx, academyID, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListForUser(ctx context.Context, academyID, userID uuid.UUID, limit, offset int) ([]*models.Attendance, error) {
	args := m.Called(ctx, academyID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) CountForUserSince(ctx context.Context, academyID, userID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, academyID, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockAttendanceRepository) Stats(ctx context.Context, academyID, userID uuid.UUID, since time.Time) (*models.AttendanceStats, error) {
	args := m.Called(ctx, academyID, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttendanceStats), args.Error(1)
}

func (m *MockAttendanceRepository) CountSince(ctx context.Context, academyID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, academyID, since)
	return args.Int(0), args.Error(1)
}

type MockBeltRepository struct {
	mock.Mock
}

func (m *MockBeltRepository) Create(ctx context.Context, b *models.Belt) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBeltRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Belt, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Belt), args.Error(1)
}

func (m *MockBeltRepository) Update(ctx context.Context, b *models.Belt) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBeltRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockBeltRepository) List(ctx context.Context, academyID uuid.UUID, discipline string) ([]*models.Belt, error) {
	args := m.Called(ctx, academyID, discipline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Belt), args.Error(1)
}

func (m *MockBeltRepository) Next(ctx context.Context, academyID uuid.UUID, discipline string, rank int) (*models.Belt, error) {
	args := m.Called(ctx, academyID, discipline, rank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Belt), args.Error(1)
}

func (m *MockBeltRepository) First(ctx context.Context, academyID uuid.UUID, discipline string) (*models.Belt, error) {
	args := m.Called(ctx, academyID, discipline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Belt), args.Error(1)
}

type MockCurriculumRepository struct {
	mock.Mock
}

func (m *MockCurriculumRepository) Create(ctx context.Context, item *models.CurriculumItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCurriculumRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.CurriculumItem, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurriculumItem), args.Error(1)
}

func (m *MockCurriculumRepository) Update(ctx context.Context, item *models.CurriculumItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCurriculumRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockCurriculumRepository) ListByBelt(ctx context.Context, academyID, beltID uuid.UUID) ([]*models.CurriculumItem, error) {
	args := m.Called(ctx, academyID, beltID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CurriculumItem), args.Error(1)
}

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) Create(ctx context.Context, p *models.Promotion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromotionRepository) Latest(ctx context.Context, academyID, userID uuid.UUID) (*models.Promotion, error) {
	args := m.Called(ctx, academyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) ListForUser(ctx context.Context, academyID, userID uuid.UUID) ([]*models.Promotion, error) {
	args := m.Called(ctx, academyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Promotion), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *models.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, e *models.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockEventRepository) List(ctx context.Context, academyID uuid.UUID, from *time.Time) ([]*models.Event, error) {
	args := m.Called(ctx, academyID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) Register(ctx context.Context, reg *models.EventRegistration) (bool, error) {
	args := m.Called(ctx, reg)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) IsRegistered(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) Unregister(ctx context.Context, academyID, eventID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, academyID, eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) ListRegistrations(ctx context.Context, academyID, eventID uuid.UUID) ([]*models.EventRegistration, error) {
	args := m.Called(ctx, academyID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EventRegistration), args.Error(1)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectKey, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorageService) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorageService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetPublicBranding(ctx context.Context, slug string) (*models.PublicBranding, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicBranding), args.Error(1)
}

func (m *MockCacheService) SetPublicBranding(ctx context.Context, slug string, branding *models.PublicBranding, ttl time.Duration) error {
	args := m.Called(ctx, slug, branding, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeletePublicBranding(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockCacheService) GetDashboard(ctx context.Context, academyID uuid.UUID) (*models.Dashboard, error) {
	args := m.Called(ctx, academyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockCacheService) SetDashboard(ctx context.Context, academyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error {
	args := m.Called(ctx, academyID, dashboard, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteDashboard(ctx context.Context, academyID uuid.UUID) error {
	args := m.Called(ctx, academyID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) ResetRateLimit(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMercadoPagoClient struct {
	mock.Mock
}

func (m *MockMercadoPagoClient) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Preference), args.Error(1)
}

func (m *MockMercadoPagoClient) GetPayment(ctx context.Context, id string) (*MercadoPagoPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MercadoPagoPayment), args.Error(1)
}

func (m *MockMercadoPagoClient) VerifySignature(xSignature, xRequestID, dataID string) bool {
	args := m.Called(xSignature, xRequestID, dataID)
	return args.Bool(0)
}

type MockFlowClient struct {
	mock.Mock
}

func (m *MockFlowClient) CreatePayment(ctx context.Context, req *FlowPaymentRequest) (*FlowPaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FlowPaymentResponse), args.Error(1)
}

func (m *MockFlowClient) GetStatus(ctx context.Context, token string) (*FlowPaymentStatus, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FlowPaymentStatus), args.Error(1)
}

type MockReceiptRenderer struct {
	mock.Mock
}

func (m *MockReceiptRenderer) Render(data *models.ReceiptData) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) Create(ctx context.Context, ch *models.Channel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockChannelRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Channel, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockChannelRepository) Update(ctx context.Context, ch *models.Channel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockChannelRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockChannelRepository) List(ctx context.Context, academyID uuid.UUID, visibility *models.ChannelVisibility) ([]*models.Channel, error) {
	args := m.Called(ctx, academyID, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, c *models.Content) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContentRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Content, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Content), args.Error(1)
}

func (m *MockContentRepository) Update(ctx context.Context, c *models.Content) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContentRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockContentRepository) List(ctx context.Context, academyID uuid.UUID, filters *models.ContentFilters) ([]*models.Content, error) {
	args := m.Called(ctx, academyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Content), args.Error(1)
}

type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) Create(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockMatchRepository) Update(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockMatchRepository) List(ctx context.Context, academyID uuid.UUID, category string) ([]*models.Match, error) {
	args := m.Called(ctx, academyID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) Create(ctx context.Context, e *models.PlayerEvaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEvaluationRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.PlayerEvaluation, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerEvaluation), args.Error(1)
}

func (m *MockEvaluationRepository) Update(ctx context.Context, e *models.PlayerEvaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEvaluationRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockEvaluationRepository) List(ctx context.Context, academyID uuid.UUID, playerID *uuid.UUID) ([]*models.PlayerEvaluation, error) {
	args := m.Called(ctx, academyID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayerEvaluation), args.Error(1)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Expense, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) List(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.Expense, error) {
	args := m.Called(ctx, academyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

func (m *MockExpenseRepository) TotalsByCategory(ctx context.Context, academyID uuid.UUID, from, to time.Time) ([]*models.ExpenseCategoryTotal, error) {
	args := m.Called(ctx, academyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpenseCategoryTotal), args.Error(1)
}

type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) Create(ctx context.Context, c *models.Class) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClassRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Class, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *MockClassRepository) Update(ctx context.Context, c *models.Class) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClassRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockClassRepository) List(ctx context.Context, academyID uuid.UUID) ([]*models.Class, error) {
	args := m.Called(ctx, academyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Class), args.Error(1)
}
