package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodMercadoPago  PaymentMethod = "MERCADO_PAGO"
	MethodFlow         PaymentMethod = "FLOW"
	MethodCash         PaymentMethod = "CASH"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodMercadoPago, MethodFlow, MethodCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentPaid       PaymentStatus = "PAID"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentCanceled   PaymentStatus = "CANCELED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing, PaymentPaid, PaymentFailed, PaymentCanceled},
	PaymentProcessing: {PaymentPaid, PaymentFailed, PaymentCanceled},
	PaymentPaid:       {PaymentRefunded},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentPaid, PaymentFailed, PaymentCanceled, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

// CanTransitionTo reports whether s may move to next. Same-status moves are
// allowed so that provider notification replays are idempotent.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Payment struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	AcademyID    uuid.UUID       `json:"academy_id" db:"academy_id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	MembershipID *uuid.UUID      `json:"membership_id" db:"membership_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Currency     string          `json:"currency" db:"currency"`
	Method       PaymentMethod   `json:"method" db:"method"`
	Status       PaymentStatus   `json:"status" db:"status"`
	ProviderRef  *string         `json:"provider_ref" db:"provider_ref"`
	ExternalID   *string         `json:"external_id" db:"external_id"`
	CheckoutURL  *string         `json:"checkout_url" db:"checkout_url"`
	ProofObject  *string         `json:"-" db:"proof_object"`
	ProofURL     *string         `json:"proof_url,omitempty" db:"-"`
	PaidAt       *time.Time      `json:"paid_at" db:"paid_at"`
	Notes        *string         `json:"notes" db:"notes"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

type PaymentFilters struct {
	Status *PaymentStatus
	Method *PaymentMethod
	UserID *uuid.UUID
	Limit  int
	Offset int
}

// ReceiptData is everything the receipt PDF renders.
type ReceiptData struct {
	Academy *Academy
	Payment *Payment
	Payer   *User
	Plan    *Plan
}

type BankAccount struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AcademyID     uuid.UUID `json:"academy_id" db:"academy_id"`
	BankName      string    `json:"bank_name" db:"bank_name"`
	AccountType   string    `json:"account_type" db:"account_type"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	HolderName    string    `json:"holder_name" db:"holder_name"`
	HolderTaxID   string    `json:"holder_tax_id" db:"holder_tax_id"`
	Email         *string   `json:"email" db:"email"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
