package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dojohub/internal/caching"
	"dojohub/internal/common"
	"dojohub/internal/logging"
	"dojohub/internal/metrics"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

// CheckoutURLs are the callback and return URLs handed to providers.
type CheckoutURLs struct {
	MercadoPagoNotification string
	MercadoPagoSuccess      string
	FlowConfirmation        string
	FlowReturn              string
}

type RecordPaymentRequest struct {
	UserID       string          `json:"user_id" validate:"required,uuid"`
	MembershipID *string         `json:"membership_id" validate:"omitempty,uuid"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method" validate:"required,oneof=CASH BANK_TRANSFER"`
	PaidAt       *time.Time      `json:"paid_at"`
	Notes        *string         `json:"notes" validate:"omitempty,max=500"`
}

type SubmitTransferRequest struct {
	MembershipID *string         `form:"membership_id" validate:"omitempty,uuid"`
	Amount       decimal.Decimal `form:"amount"`
	Notes        *string         `form:"notes" validate:"omitempty,max=500"`
}

type CheckoutRequest struct {
	MembershipID string `json:"membership_id" validate:"required,uuid"`
}

// MercadoPagoNotification carries what the webhook needs from the request.
type MercadoPagoNotification struct {
	Signature string
	RequestID string
	Topic     string
	DataID    string
}

// StatusChange carries the optional parts of a payment status change.
type StatusChange struct {
	ExternalID *string
	Notes      *string
	ChangedBy  *uuid.UUID
	PaidAt     *time.Time
	// Method, when set, must match the payment method.
	Method models.PaymentMethod
	// From, when set, lists the statuses the payment may currently be in.
	From []models.PaymentStatus
}

type PaymentService interface {
	SetStatus(ctx context.Context, academyID, id uuid.UUID, status models.PaymentStatus, change StatusChange) (*models.Payment, error)

	RecordManual(ctx context.Context, academyID, actorID uuid.UUID, req *RecordPaymentRequest) (*models.Payment, error)
	SubmitTransfer(ctx context.Context, academyID, userID uuid.UUID, req *SubmitTransferRequest, proof *Upload) (*models.Payment, error)
	ApproveTransfer(ctx context.Context, academyID, actorID, id uuid.UUID) (*models.Payment, error)
	RejectTransfer(ctx context.Context, academyID, actorID, id uuid.UUID, reason string) (*models.Payment, error)

	StartMercadoPago(ctx context.Context, academyID, userID, membershipID uuid.UUID) (*models.Payment, error)
	HandleMercadoPagoNotification(ctx context.Context, n *MercadoPagoNotification) error
	StartFlow(ctx context.Context, academyID, userID, membershipID uuid.UUID) (*models.Payment, error)
	HandleFlowConfirmation(ctx context.Context, token string) error
	ConfirmFlow(ctx context.Context, academyID, actorID, id uuid.UUID) (*models.Payment, error)

	Refund(ctx context.Context, academyID, actorID, id uuid.UUID, reason string) (*models.Payment, error)
	Cancel(ctx context.Context, academyID, actorID uuid.UUID, role models.Role, id uuid.UUID) (*models.Payment, error)

	ListPayments(ctx context.Context, academyID uuid.UUID, filters *models.PaymentFilters) ([]*models.Payment, error)
	// GetPayment restricts the lookup to ownerID when it is set.
	GetPayment(ctx context.Context, academyID, id uuid.UUID, ownerID *uuid.UUID) (*models.Payment, error)
	Receipt(ctx context.Context, academyID, id uuid.UUID, ownerID *uuid.UUID) ([]byte, error)
}

type paymentService struct {
	txManager      repositories.TxManager
	paymentRepo    repositories.PaymentRepository
	membershipRepo repositories.MembershipRepository
	planRepo       repositories.PlanRepository
	userRepo       repositories.UserRepository
	academyRepo    repositories.AcademyRepository
	memberships    MembershipService
	storage        StorageService
	cacheSvc       caching.CacheService
	mercadoPago    MercadoPagoClient
	flow           FlowClient
	receipts       ReceiptRenderer
	urls           CheckoutURLs
	now            func() time.Time
}

// PaymentDeps groups the collaborators of the payment service.
type PaymentDeps struct {
	TxManager   repositories.TxManager
	Payments    repositories.PaymentRepository
	Memberships repositories.MembershipRepository
	Plans       repositories.PlanRepository
	Users       repositories.UserRepository
	Academies   repositories.AcademyRepository
	Membership  MembershipService
	Storage     StorageService
	Cache       caching.CacheService
	MercadoPago MercadoPagoClient
	Flow        FlowClient
	Receipts    ReceiptRenderer
	URLs        CheckoutURLs
}

func NewPaymentService(deps PaymentDeps) PaymentService {
	return &paymentService{
		txManager:      deps.TxManager,
		paymentRepo:    deps.Payments,
		membershipRepo: deps.Memberships,
		planRepo:       deps.Plans,
		userRepo:       deps.Users,
		academyRepo:    deps.Academies,
		memberships:    deps.Membership,
		storage:        deps.Storage,
		cacheSvc:       deps.Cache,
		mercadoPago:    deps.MercadoPago,
		flow:           deps.Flow,
		receipts:       deps.Receipts,
		urls:           deps.URLs,
		now:            time.Now,
	}
}

// SetStatus locks the payment row, validates the transition, updates it and
// applies a PAID payment to its membership, all in one transaction.
func (s *paymentService) SetStatus(ctx context.Context, academyID, id uuid.UUID, status models.PaymentStatus, change StatusChange) (*models.Payment, error) {
	if !status.Valid() {
		return nil, invalidField("status", "unknown payment status %q", status)
	}

	var payment *models.Payment
	var changed bool
	err := s.txManager.WithinTx(ctx, func(r *repositories.TxRepos) error {
		p, err := r.Payments.GetByIDForUpdate(ctx, academyID, id)
		if err != nil {
			return notFound("payment", err)
		}
		payment = p
		changed, err = s.applyStatus(ctx, r, p, status, change)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.afterTransition(ctx, payment)
	}
	return payment, nil
}

// applyStatus changes the status of a locked payment and reports whether
// anything changed.
func (s *paymentService) applyStatus(ctx context.Context, r *repositories.TxRepos, p *models.Payment, status models.PaymentStatus, change StatusChange) (bool, error) {
	if change.Method != "" && p.Method != change.Method {
		return false, invalidField("method", "payment method is %s, expected %s", p.Method, change.Method)
	}
	if len(change.From) > 0 && p.Status != status && !containsStatus(change.From, p.Status) {
		return false, fmt.Errorf("%w: payment is %s", ErrInvalidTransition, p.Status)
	}
	if p.Status == status {
		return false, nil
	}
	if !p.Status.CanTransitionTo(status) {
		return false, fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, p.Status, status)
	}

	old := p.Status
	p.Status = status
	if change.ExternalID != nil {
		p.ExternalID = change.ExternalID
	}
	if change.Notes != nil {
		p.Notes = change.Notes
	}
	if status == models.PaymentPaid && p.PaidAt == nil {
		paidAt := s.now().UTC()
		if change.PaidAt != nil {
			paidAt = change.PaidAt.UTC()
		}
		p.PaidAt = &paidAt
	}

	if err := r.Payments.Update(ctx, p); err != nil {
		return false, fmt.Errorf("update payment: %w", err)
	}
	if status == models.PaymentPaid {
		if err := s.memberships.ApplyPaidPayment(ctx, r, p, change.ChangedBy); err != nil {
			return false, err
		}
	}
	if err := writeAudit(ctx, r.AuditLogs, p.AcademyID, "payments", p.ID.String(), models.ActionStatusChange, change.ChangedBy,
		statusValues(string(old)), statusValues(string(status))); err != nil {
		return false, fmt.Errorf("audit payment: %w", err)
	}
	return true, nil
}

func (s *paymentService) afterTransition(ctx context.Context, p *models.Payment) {
	metrics.RecordPaymentTransition(string(p.Method), string(p.Status))
	if err := s.cacheSvc.DeleteDashboard(ctx, p.AcademyID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("academy_id", p.AcademyID.String()).Msg("dashboard cache invalidation failed")
	}
	logging.Ctx(ctx).Info().
		Str("payment_id", p.ID.String()).
		Str("method", string(p.Method)).
		Str("status", string(p.Status)).
		Msg("payment status changed")
}

func containsStatus(list []models.PaymentStatus, status models.PaymentStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

// payerMembership resolves an optional membership id that must belong to userID.
func (s *paymentService) payerMembership(ctx context.Context, academyID, userID uuid.UUID, raw *string) (*models.Membership, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(*raw, "membership_id")
	if err != nil {
		return nil, invalidField("membership_id", "%s", err.Error())
	}
	m, err := s.membershipRepo.GetByID(ctx, academyID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, invalidField("membership_id", "membership_id does not exist")
		}
		return nil, err
	}
	if m.UserID != userID {
		return nil, invalidField("membership_id", "membership belongs to another user")
	}
	return m, nil
}

// paymentAmount defaults to the plan price when amount is zero and a
// membership is linked.
func (s *paymentService) paymentAmount(ctx context.Context, academy *models.Academy, m *models.Membership, amount decimal.Decimal) (decimal.Decimal, string, error) {
	currency := academy.Currency
	if m != nil {
		plan, err := s.planRepo.GetByID(ctx, academy.ID, m.PlanID)
		if err != nil {
			return decimal.Zero, "", notFound("plan", err)
		}
		currency = plan.Currency
		if amount.IsZero() {
			amount = plan.Price
		}
	}
	if !amount.IsPositive() {
		return decimal.Zero, "", invalidField("amount", "amount must be greater than 0")
	}
	return amount.Round(2), currency, nil
}

func (s *paymentService) RecordManual(ctx context.Context, academyID, actorID uuid.UUID, req *RecordPaymentRequest) (*models.Payment, error) {
	method := models.PaymentMethod(req.Method)
	if method != models.MethodCash && method != models.MethodBankTransfer {
		return nil, invalidField("method", "method must be one of: CASH BANK_TRANSFER")
	}
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return nil, invalidField("user_id", "%s", err.Error())
	}
	if _, err := loadStudent(ctx, s.userRepo, academyID, userID, "user_id"); err != nil {
		return nil, err
	}
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}
	membership, err := s.payerMembership(ctx, academyID, userID, req.MembershipID)
	if err != nil {
		return nil, err
	}
	amount, currency, err := s.paymentAmount(ctx, academy, membership, req.Amount)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	payment := &models.Payment{
		ID:        uuid.New(),
		AcademyID: academyID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Status:    models.PaymentPending,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if membership != nil {
		payment.MembershipID = &membership.ID
	}

	err = s.txManager.WithinTx(ctx, func(r *repositories.TxRepos) error {
		if err := r.Payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		_, err := s.applyStatus(ctx, r, payment, models.PaymentPaid, StatusChange{ChangedBy: &actorID, PaidAt: req.PaidAt})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, payment)
	return payment, nil
}

// SubmitTransfer stores the proof under
// academies/{id}/payments/{payment}/proof.{ext} and leaves the payment
// PROCESSING until an admin reviews it.
func (s *paymentService) SubmitTransfer(ctx context.Context, academyID, userID uuid.UUID, req *SubmitTransferRequest, proof *Upload) (*models.Payment, error) {
	ext, err := checkUpload("proof", proof, maxProofSize, proofTypes)
	if err != nil {
		return nil, err
	}
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}
	membership, err := s.payerMembership(ctx, academyID, userID, req.MembershipID)
	if err != nil {
		return nil, err
	}
	amount, currency, err := s.paymentAmount(ctx, academy, membership, req.Amount)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := academyObjectKey(academyID, "payments", id.String(), "proof."+ext)
	if err := s.storage.Upload(ctx, key, proof.Reader, proof.Size, proof.ContentType); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	payment := &models.Payment{
		ID:          id,
		AcademyID:   academyID,
		UserID:      userID,
		Amount:      amount,
		Currency:    currency,
		Method:      models.MethodBankTransfer,
		Status:      models.PaymentProcessing,
		ProofObject: &key,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if membership != nil {
		payment.MembershipID = &membership.ID
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logging.Ctx(ctx).Warn().Err(delErr).Str("object", key).Msg("failed to remove orphaned proof")
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.afterTransition(ctx, payment)
	payment.ProofURL = presign(ctx, s.storage, payment.ProofObject)
	return payment, nil
}

func (s *paymentService) ApproveTransfer(ctx context.Context, academyID, actorID, id uuid.UUID) (*models.Payment, error) {
	return s.SetStatus(ctx, academyID, id, models.PaymentPaid, StatusChange{
		ChangedBy: &actorID,
		Method:    models.MethodBankTransfer,
	})
}

func (s *paymentService) RejectTransfer(ctx context.Context, academyID, actorID, id uuid.UUID, reason string) (*models.Payment, error) {
	return s.SetStatus(ctx, academyID, id, models.PaymentFailed, StatusChange{
		ChangedBy: &actorID,
		Method:    models.MethodBankTransfer,
		Notes:     common.StringPtr(reason),
	})
}

type checkoutInfo struct {
	academy    *models.Academy
	user       *models.User
	membership *models.Membership
	plan       *models.Plan
}

// checkoutFor loads what a provider checkout needs. The membership must be
// the caller's own and still live.
func (s *paymentService) checkoutFor(ctx context.Context, academyID, userID, membershipID uuid.UUID) (*checkoutInfo, error) {
	m, err := s.membershipRepo.GetByID(ctx, academyID, membershipID)
	if err != nil {
		return nil, notFound("membership", err)
	}
	if m.UserID != userID {
		return nil, fmt.Errorf("membership %w", ErrNotFound)
	}
	if !m.Status.Live() {
		return nil, invalidField("membership_id", "membership is %s", m.Status)
	}
	plan, err := s.planRepo.GetByID(ctx, academyID, m.PlanID)
	if err != nil {
		return nil, notFound("plan", err)
	}
	user, err := s.userRepo.GetByID(ctx, academyID, userID)
	if err != nil {
		return nil, notFound("user", err)
	}
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}
	return &checkoutInfo{academy: academy, user: user, membership: m, plan: plan}, nil
}

func (s *paymentService) newCheckoutPayment(info *checkoutInfo, id uuid.UUID, method models.PaymentMethod, ref, checkoutURL string) *models.Payment {
	now := s.now().UTC()
	return &models.Payment{
		ID:           id,
		AcademyID:    info.academy.ID,
		UserID:       info.user.ID,
		MembershipID: &info.membership.ID,
		Amount:       info.plan.Price,
		Currency:     info.plan.Currency,
		Method:       method,
		Status:       models.PaymentPending,
		ProviderRef:  &ref,
		CheckoutURL:  &checkoutURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *paymentService) StartMercadoPago(ctx context.Context, academyID, userID, membershipID uuid.UUID) (*models.Payment, error) {
	info, err := s.checkoutFor(ctx, academyID, userID, membershipID)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	pref, err := s.mercadoPago.CreatePreference(ctx, &PreferenceRequest{
		ExternalReference: id.String(),
		Title:             fmt.Sprintf("%s - %s", info.academy.Name, info.plan.Name),
		Amount:            info.plan.Price,
		Currency:          info.plan.Currency,
		PayerEmail:        info.user.Email,
		NotificationURL:   s.urls.MercadoPagoNotification,
		SuccessURL:        s.urls.MercadoPagoSuccess,
	})
	if err != nil {
		return nil, err
	}

	payment := s.newCheckoutPayment(info, id, models.MethodMercadoPago, pref.ID, pref.InitPoint)
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

// HandleMercadoPagoNotification verifies the signature, fetches the payment
// from Mercado Pago and applies the mapped status. Stale notifications that
// would move a payment backwards are logged and acknowledged.
func (s *paymentService) HandleMercadoPagoNotification(ctx context.Context, n *MercadoPagoNotification) error {
	if !s.mercadoPago.VerifySignature(n.Signature, n.RequestID, n.DataID) {
		return fmt.Errorf("%w: invalid mercado pago signature", ErrUnauthorized)
	}
	if n.Topic != "payment" {
		logging.Ctx(ctx).Debug().Str("topic", n.Topic).Msg("ignoring mercado pago notification")
		return nil
	}
	if n.DataID == "" {
		return invalidField("data.id", "data.id is required")
	}

	remote, err := s.mercadoPago.GetPayment(ctx, n.DataID)
	if err != nil {
		return err
	}
	localID, err := uuid.Parse(remote.ExternalReference)
	if err != nil {
		logging.Ctx(ctx).Warn().Str("external_reference", remote.ExternalReference).Msg("mercado pago payment without local reference")
		return nil
	}
	payment, err := s.paymentRepo.GetByIDAnyAcademy(ctx, localID)
	if err != nil {
		return notFound("payment", err)
	}
	if payment.Method != models.MethodMercadoPago {
		return invalidField("method", "payment is not a mercado pago payment")
	}

	status, ok := MapMercadoPagoStatus(remote.Status)
	if !ok {
		logging.Ctx(ctx).Warn().Str("status", remote.Status).Msg("unmapped mercado pago status")
		return nil
	}
	externalID := strconv.FormatInt(remote.ID, 10)
	_, err = s.SetStatus(ctx, payment.AcademyID, payment.ID, status, StatusChange{ExternalID: &externalID})
	return ignoreStale(ctx, err, payment.ID)
}

func (s *paymentService) StartFlow(ctx context.Context, academyID, userID, membershipID uuid.UUID) (*models.Payment, error) {
	info, err := s.checkoutFor(ctx, academyID, userID, membershipID)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	resp, err := s.flow.CreatePayment(ctx, &FlowPaymentRequest{
		CommerceOrder:   id.String(),
		Subject:         fmt.Sprintf("%s - %s", info.academy.Name, info.plan.Name),
		Currency:        info.plan.Currency,
		Amount:          info.plan.Price,
		Email:           info.user.Email,
		URLConfirmation: s.urls.FlowConfirmation,
		URLReturn:       s.urls.FlowReturn,
	})
	if err != nil {
		return nil, err
	}

	payment := s.newCheckoutPayment(info, id, models.MethodFlow, resp.Token, resp.CheckoutURL())
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

// HandleFlowConfirmation trusts nothing from the callback except the token:
// the status is re-read through the signed getStatus call.
func (s *paymentService) HandleFlowConfirmation(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalidField("token", "token is required")
	}
	payment, err := s.paymentRepo.FindByProviderRef(ctx, models.MethodFlow, token)
	if err != nil {
		return notFound("payment", err)
	}
	_, err = s.applyFlowStatus(ctx, payment, nil)
	return ignoreStale(ctx, err, payment.ID)
}

func (s *paymentService) ConfirmFlow(ctx context.Context, academyID, actorID, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("payment", err)
	}
	if payment.Method != models.MethodFlow || payment.ProviderRef == nil {
		return nil, invalidField("method", "payment is not a flow payment")
	}
	return s.applyFlowStatus(ctx, payment, &actorID)
}

func (s *paymentService) applyFlowStatus(ctx context.Context, payment *models.Payment, changedBy *uuid.UUID) (*models.Payment, error) {
	remote, err := s.flow.GetStatus(ctx, *payment.ProviderRef)
	if err != nil {
		return nil, err
	}
	status, ok := MapFlowStatus(remote.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown flow status %d", ErrProvider, remote.Status)
	}
	externalID := strconv.FormatInt(remote.FlowOrder, 10)
	return s.SetStatus(ctx, payment.AcademyID, payment.ID, status, StatusChange{
		ExternalID: &externalID,
		ChangedBy:  changedBy,
		Method:     models.MethodFlow,
	})
}

// ignoreStale acknowledges provider callbacks that arrive out of order.
func ignoreStale(ctx context.Context, err error, paymentID uuid.UUID) error {
	if errors.Is(err, ErrInvalidTransition) {
		logging.Ctx(ctx).Warn().Err(err).Str("payment_id", paymentID.String()).Msg("ignoring stale provider notification")
		return nil
	}
	return err
}

// Refund is local bookkeeping only. No provider refund is issued.
func (s *paymentService) Refund(ctx context.Context, academyID, actorID, id uuid.UUID, reason string) (*models.Payment, error) {
	return s.SetStatus(ctx, academyID, id, models.PaymentRefunded, StatusChange{
		ChangedBy: &actorID,
		Notes:     common.StringPtr(reason),
	})
}

// Cancel is allowed to the owner or an admin while the payment is PENDING.
func (s *paymentService) Cancel(ctx context.Context, academyID, actorID uuid.UUID, role models.Role, id uuid.UUID) (*models.Payment, error) {
	if role != models.RoleAdmin {
		if _, err := s.GetPayment(ctx, academyID, id, &actorID); err != nil {
			return nil, err
		}
	}
	return s.SetStatus(ctx, academyID, id, models.PaymentCanceled, StatusChange{
		ChangedBy: &actorID,
		From:      []models.PaymentStatus{models.PaymentPending},
	})
}

func (s *paymentService) ListPayments(ctx context.Context, academyID uuid.UUID, filters *models.PaymentFilters) ([]*models.Payment, error) {
	if filters == nil {
		filters = &models.PaymentFilters{}
	}
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, invalidField("status", "unknown payment status %q", *filters.Status)
	}
	if filters.Method != nil && !filters.Method.Valid() {
		return nil, invalidField("method", "unknown payment method %q", *filters.Method)
	}
	limit, offset, err := common.ValidatePaginationParams(filters.Limit, filters.Offset)
	if err != nil {
		return nil, invalidField("offset", "%s", err.Error())
	}
	filters.Limit, filters.Offset = limit, offset
	return s.paymentRepo.List(ctx, academyID, filters)
}

func (s *paymentService) GetPayment(ctx context.Context, academyID, id uuid.UUID, ownerID *uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, academyID, id)
	if err != nil {
		return nil, notFound("payment", err)
	}
	if ownerID != nil && payment.UserID != *ownerID {
		return nil, fmt.Errorf("payment %w", ErrNotFound)
	}
	payment.ProofURL = presign(ctx, s.storage, payment.ProofObject)
	return payment, nil
}

func (s *paymentService) Receipt(ctx context.Context, academyID, id uuid.UUID, ownerID *uuid.UUID) ([]byte, error) {
	payment, err := s.GetPayment(ctx, academyID, id, ownerID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPaid {
		return nil, invalidField("status", "receipts are only available for paid payments")
	}
	academy, err := s.academyRepo.GetByID(ctx, academyID)
	if err != nil {
		return nil, notFound("academy", err)
	}
	payer, err := s.userRepo.GetByID(ctx, academyID, payment.UserID)
	if err != nil {
		return nil, notFound("user", err)
	}
	data := &models.ReceiptData{Academy: academy, Payment: payment, Payer: payer}
	if payment.MembershipID != nil {
		if m, err := s.membershipRepo.GetByID(ctx, academyID, *payment.MembershipID); err == nil {
			if plan, err := s.planRepo.GetByID(ctx, academyID, m.PlanID); err == nil {
				data.Plan = plan
			}
		}
	}
	return s.receipts.Render(data)
}
