package repositories

import (
	"context"
	"fmt"
	"time"

	"dojohub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Payment, error)
	GetByIDForUpdate(ctx context.Context, academyID, id uuid.UUID) (*models.Payment, error)
	// GetByIDAnyAcademy resolves provider notifications that only carry the
	// payment id.
	GetByIDAnyAcademy(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByProviderRef(ctx context.Context, method models.PaymentMethod, ref string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	List(ctx context.Context, academyID uuid.UUID, filters *models.PaymentFilters) ([]*models.Payment, error)
	SumPaidBetween(ctx context.Context, academyID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	Count(ctx context.Context, academyID uuid.UUID, method models.PaymentMethod, status models.PaymentStatus) (int, error)
}

type paymentRepo struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, academy_id, user_id, membership_id, amount, currency, method, status, provider_ref, external_id,
	checkout_url, proof_object, paid_at, notes, created_at, updated_at`

func scanPayment(row scanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.AcademyID, &p.UserID, &p.MembershipID, &p.Amount, &p.Currency, &p.Method, &p.Status,
		&p.ProviderRef, &p.ExternalID, &p.CheckoutURL, &p.ProofObject, &p.PaidAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (id, academy_id, user_id, membership_id, amount, currency, method, status, provider_ref,
			external_id, checkout_url, proof_object, paid_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.AcademyID, p.UserID, p.MembershipID, p.Amount, p.Currency, p.Method,
		p.Status, p.ProviderRef, p.ExternalID, p.CheckoutURL, p.ProofObject, p.PaidAt, p.Notes)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE academy_id = $1 AND id = $2`
	return scanPayment(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *paymentRepo) GetByIDForUpdate(ctx context.Context, academyID, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE academy_id = $1 AND id = $2 FOR UPDATE`
	return scanPayment(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *paymentRepo) GetByIDAnyAcademy(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, id))
}

func (r *paymentRepo) FindByProviderRef(ctx context.Context, method models.PaymentMethod, ref string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE method = $1 AND provider_ref = $2`
	return scanPayment(r.db.QueryRow(ctx, query, method, ref))
}

func (r *paymentRepo) Update(ctx context.Context, p *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, provider_ref = $2, external_id = $3, checkout_url = $4, proof_object = $5,
			paid_at = $6, notes = $7, updated_at = NOW()
		WHERE academy_id = $8 AND id = $9
	`
	return affected(r.db.Exec(ctx, query, p.Status, p.ProviderRef, p.ExternalID, p.CheckoutURL, p.ProofObject, p.PaidAt,
		p.Notes, p.AcademyID, p.ID))
}

func (r *paymentRepo) List(ctx context.Context, academyID uuid.UUID, filters *models.PaymentFilters) ([]*models.Payment, error) {
	args := newArgList(academyID)
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE academy_id = $1`
	if filters.Status != nil {
		query += " AND status = " + args.add(*filters.Status)
	}
	if filters.Method != nil {
		query += " AND method = " + args.add(*filters.Method)
	}
	if filters.UserID != nil {
		query += " AND user_id = " + args.add(*filters.UserID)
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", args.add(filters.Limit), args.add(filters.Offset))
	}

	rows, err := r.db.Query(ctx, query, args.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepo) SumPaidBetween(ctx context.Context, academyID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE academy_id = $1 AND status = 'PAID' AND paid_at >= $2 AND paid_at < $3
	`
	err := r.db.QueryRow(ctx, query, academyID, from, to).Scan(&total)
	return total, err
}

func (r *paymentRepo) Count(ctx context.Context, academyID uuid.UUID, method models.PaymentMethod, status models.PaymentStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM payments WHERE academy_id = $1 AND method = $2 AND status = $3`
	err := r.db.QueryRow(ctx, query, academyID, method, status).Scan(&count)
	return count, err
}

type BankAccountRepository interface {
	Create(ctx context.Context, a *models.BankAccount) error
	GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.BankAccount, error)
	Update(ctx context.Context, a *models.BankAccount) error
	Delete(ctx context.Context, academyID, id uuid.UUID) error
	List(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.BankAccount, error)
}

type bankAccountRepo struct {
	db DBTX
}

func NewBankAccountRepository(db DBTX) BankAccountRepository {
	return &bankAccountRepo{db: db}
}

const bankAccountColumns = `id, academy_id, bank_name, account_type, account_number, holder_name, holder_tax_id, email, active, created_at, updated_at`

func scanBankAccount(row scanner) (*models.BankAccount, error) {
	a := &models.BankAccount{}
	err := row.Scan(&a.ID, &a.AcademyID, &a.BankName, &a.AccountType, &a.AccountNumber, &a.HolderName,
		&a.HolderTaxID, &a.Email, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *bankAccountRepo) Create(ctx context.Context, a *models.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (id, academy_id, bank_name, account_type, account_number, holder_name, holder_tax_id, email, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.AcademyID, a.BankName, a.AccountType, a.AccountNumber, a.HolderName,
		a.HolderTaxID, a.Email, a.Active)
	return err
}

func (r *bankAccountRepo) GetByID(ctx context.Context, academyID, id uuid.UUID) (*models.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE academy_id = $1 AND id = $2`
	return scanBankAccount(r.db.QueryRow(ctx, query, academyID, id))
}

func (r *bankAccountRepo) Update(ctx context.Context, a *models.BankAccount) error {
	query := `
		UPDATE bank_accounts
		SET bank_name = $1, account_type = $2, account_number = $3, holder_name = $4, holder_tax_id = $5,
			email = $6, active = $7, updated_at = NOW()
		WHERE academy_id = $8 AND id = $9
	`
	return affected(r.db.Exec(ctx, query, a.BankName, a.AccountType, a.AccountNumber, a.HolderName, a.HolderTaxID,
		a.Email, a.Active, a.AcademyID, a.ID))
}

func (r *bankAccountRepo) Delete(ctx context.Context, academyID, id uuid.UUID) error {
	query := `DELETE FROM bank_accounts WHERE academy_id = $1 AND id = $2`
	return affected(r.db.Exec(ctx, query, academyID, id))
}

func (r *bankAccountRepo) List(ctx context.Context, academyID uuid.UUID, activeOnly bool) ([]*models.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE academy_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY bank_name`

	rows, err := r.db.Query(ctx, query, academyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
