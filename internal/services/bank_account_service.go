package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

type BankAccountRequest struct {
	BankName      string  `json:"bank_name" validate:"required,max=120"`
	AccountType   string  `json:"account_type" validate:"required,max=60"`
	AccountNumber string  `json:"account_number" validate:"required,max=60"`
	HolderName    string  `json:"holder_name" validate:"required,max=120"`
	HolderTaxID   string  `json:"holder_tax_id" validate:"required,max=30"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Active        *bool   `json:"active"`
}

type BankAccountService interface {
	CreateBankAccount(ctx context.Context, academyID uuid.UUID, req *BankAccountRequest) (*models.BankAccount, error)
	GetBankAccount(ctx context.Context, academyID, id uuid.UUID) (*models.BankAccount, error)
	UpdateBankAccount(ctx context.Context, academyID, id uuid.UUID, req *BankAccountRequest) (*models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, academyID, id uuid.UUID) error
	ListBankAccounts(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.BankAccount, error)
}

type bankAccountService struct {
	repo repositories.BankAccountRepository
}

func NewBankAccountService(repo repositories.BankAccountRepository) BankAccountService {
	return &bankAccountService{repo: repo}
}

func applyBankAccount(a *models.BankAccount, req *BankAccountRequest) {
	a.BankName = strings.TrimSpace(req.BankName)
	a.AccountType = strings.TrimSpace(req.AccountType)
	a.AccountNumber = strings.TrimSpace(req.AccountNumber)
	a.HolderName = strings.TrimSpace(req.HolderName)
	a.HolderTaxID = strings.TrimSpace(req.HolderTaxID)
	a.Email = req.Email
	if req.Active != nil {
		a.Active = *req.Active
	}
}

func (s *bankAccountService) CreateBankAccount(ctx context.Context, academyID uuid.UUID, req *BankAccountRequest) (*models.BankAccount, error) {
	now := time.Now().UTC()
	account := &models.BankAccount{
		ID:        uuid.New(),
		AcademyID: academyID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyBankAccount(account, req)
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create bank account: %w", err)
	}
	return account, nil
}

func (s *bankAccountService) GetBankAccount(ctx context.Context, academyID, id uuid.UUID) (*models.BankAccount, error) {
	account, err := s.repo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("bank account", err)
	}
	return account, nil
}

func (s *bankAccountService) UpdateBankAccount(ctx context.Context, academyID, id uuid.UUID, req *BankAccountRequest) (*models.BankAccount, error) {
	account, err := s.GetBankAccount(ctx, academyID, id)
	if err != nil {
		return nil, err
	}
	applyBankAccount(account, req)
	account.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, notFound("bank account", err)
	}
	return account, nil
}

func (s *bankAccountService) DeleteBankAccount(ctx context.Context, academyID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, academyID, id); err != nil {
		return notFound("bank account", err)
	}
	return nil
}

func (s *bankAccountService) ListBankAccounts(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.BankAccount, error) {
	return s.repo.List(ctx, academyID, activeOnly)
}
