package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dojohub/internal/models"
)

type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) Create(ctx context.Context, a *models.BankAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockBankAccountRepository) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.BankAccount, error) {
	args := m.Called(ctx, academyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) Update(ctx context.Context, a *models.BankAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockBankAccountRepository) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	args := m.Called(ctx, academyID, id)
	return args.Error(0)
}

func (m *MockBankAccountRepository) List(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.BankAccount, error) {
	args := m.Called(ctx, academyID, activeOnly)
	return args.Get(0).([]*models.BankAccount), args.Error(1)
}

func TestBankAccountService_CreateTrimsAndActivates(t *testing.T) {
	repo := &MockBankAccountRepository{}
	svc := NewBankAccountService(repo)
	ctx := context.Background()
	academyID := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(a *models.BankAccount) bool {
		return a.AcademyID == academyID && a.BankName == "Banco Estado" && a.Active
	})).Return(nil).Once()

	account, err := svc.CreateBankAccount(ctx, academyID, &BankAccountRequest{
		BankName:      "  Banco Estado ",
		AccountType:   "Cuenta RUT",
		AccountNumber: "12345678",
		HolderName:    "Academia Gracie",
		HolderTaxID:   "76.123.456-7",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, account.ID)
	repo.AssertExpectations(t)
}

func TestBankAccountService_UpdateCanDeactivate(t *testing.T) {
	repo := &MockBankAccountRepository{}
	svc := NewBankAccountService(repo)
	ctx := context.Background()
	academyID, id := uuid.New(), uuid.New()
	inactive := false

	repo.On("GetByID", ctx, academyID, id).Return(&models.BankAccount{ID: id, AcademyID: academyID, Active: true}, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(a *models.BankAccount) bool { return !a.Active })).Return(nil).Once()

	account, err := svc.UpdateBankAccount(ctx, academyID, id, &BankAccountRequest{
		BankName: "Banco de Chile", AccountType: "Corriente", AccountNumber: "1", HolderName: "X", HolderTaxID: "1-9",
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, account.Active)
	repo.AssertExpectations(t)
}

func TestBankAccountService_MissingAccount(t *testing.T) {
	repo := &MockBankAccountRepository{}
	svc := NewBankAccountService(repo)
	ctx := context.Background()
	academyID, id := uuid.New(), uuid.New()

	repo.On("GetByID", ctx, academyID, id).Return(nil, pgx.ErrNoRows).Once()
	repo.On("Delete", ctx, academyID, id).Return(pgx.ErrNoRows).Once()

	_, err := svc.GetBankAccount(ctx, academyID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteBankAccount(ctx, academyID, id), ErrNotFound)
	repo.AssertExpectations(t)
}
