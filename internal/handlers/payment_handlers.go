package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

type PaymentHandlers struct {
	paymentService services.PaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

// ReasonRequest carries the reason of a rejection or refund.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ListPayments lists the academy's payments for admins and the caller's own
// payments for students.
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}

	filters := &models.PaymentFilters{Limit: limit, Offset: offset}
	if id.Role == models.RoleStudent {
		filters.UserID = &id.UserID
	} else if filters.UserID, err = queryUUID(c, "user_id"); err != nil {
		return err
	}
	if raw := strings.ToUpper(c.QueryParam("status")); raw != "" {
		status := models.PaymentStatus(raw)
		if !status.Valid() {
			return &services.FieldError{Field: "status", Message: "unknown payment status"}
		}
		filters.Status = &status
	}
	if raw := strings.ToUpper(c.QueryParam("method")); raw != "" {
		method := models.PaymentMethod(raw)
		if !method.Valid() {
			return &services.FieldError{Field: "method", Message: "unknown payment method"}
		}
		filters.Method = &method
	}

	payments, err := h.paymentService.ListPayments(c.Request().Context(), id.AcademyID, filters)
	if err != nil {
		return err
	}
	return listResponse(c, payments, len(payments), limit, offset)
}

func (h *PaymentHandlers) GetPayment(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	paymentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.paymentService.GetPayment(c.Request().Context(), id.AcademyID, paymentID, ownerScope(id))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// RecordPayment records a cash or transfer payment received at the desk.
func (h *PaymentHandlers) RecordPayment(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.RecordPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	payment, err := h.paymentService.RecordManual(c.Request().Context(), id.AcademyID, id.UserID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandlers) ApproveTransfer(c echo.Context) error {
	return h.transition(c, func(id identity, paymentID uuid.UUID) (*models.Payment, error) {
		return h.paymentService.ApproveTransfer(c.Request().Context(), id.AcademyID, id.UserID, paymentID)
	})
}

func (h *PaymentHandlers) RejectTransfer(c echo.Context) error {
	var req ReasonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.transition(c, func(id identity, paymentID uuid.UUID) (*models.Payment, error) {
		return h.paymentService.RejectTransfer(c.Request().Context(), id.AcademyID, id.UserID, paymentID, req.Reason)
	})
}

func (h *PaymentHandlers) Refund(c echo.Context) error {
	var req ReasonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.transition(c, func(id identity, paymentID uuid.UUID) (*models.Payment, error) {
		return h.paymentService.Refund(c.Request().Context(), id.AcademyID, id.UserID, paymentID, req.Reason)
	})
}

// ConfirmFlow re-queries Flow for a payment whose confirmation never arrived.
func (h *PaymentHandlers) ConfirmFlow(c echo.Context) error {
	return h.transition(c, func(id identity, paymentID uuid.UUID) (*models.Payment, error) {
		return h.paymentService.ConfirmFlow(c.Request().Context(), id.AcademyID, id.UserID, paymentID)
	})
}

// Cancel cancels a PENDING payment. Students may only cancel their own.
func (h *PaymentHandlers) Cancel(c echo.Context) error {
	return h.transition(c, func(id identity, paymentID uuid.UUID) (*models.Payment, error) {
		return h.paymentService.Cancel(c.Request().Context(), id.AcademyID, id.UserID, id.Role, paymentID)
	})
}

func (h *PaymentHandlers) transition(c echo.Context, fn func(id identity, paymentID uuid.UUID) (*models.Payment, error)) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	paymentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	payment, err := fn(id, paymentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// SubmitTransfer takes a multipart form with membership_id, amount, notes
// and the proof image in "proof".
func (h *PaymentHandlers) SubmitTransfer(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	req := services.SubmitTransferRequest{}
	if raw := strings.TrimSpace(c.FormValue("membership_id")); raw != "" {
		req.MembershipID = &raw
	}
	if raw := strings.TrimSpace(c.FormValue("amount")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return &services.FieldError{Field: "amount", Message: "amount must be a number"}
		}
		req.Amount = amount
	}
	if raw := strings.TrimSpace(c.FormValue("notes")); raw != "" {
		req.Notes = &raw
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	proof, closeFile, err := formUpload(c, "proof", true)
	if err != nil {
		return err
	}
	defer closeFile()

	payment, err := h.paymentService.SubmitTransfer(c.Request().Context(), id.AcademyID, id.UserID, &req, proof)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// StartMercadoPago creates a checkout preference; the response carries
// checkout_url for the redirect.
func (h *PaymentHandlers) StartMercadoPago(c echo.Context) error {
	return h.checkout(c, h.paymentService.StartMercadoPago)
}

func (h *PaymentHandlers) StartFlow(c echo.Context) error {
	return h.checkout(c, h.paymentService.StartFlow)
}

type checkoutFunc func(ctx context.Context, academyID, userID, membershipID uuid.UUID) (*models.Payment, error)

func (h *PaymentHandlers) checkout(c echo.Context, start checkoutFunc) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	membershipID, err := uuid.Parse(req.MembershipID)
	if err != nil {
		return &services.FieldError{Field: "membership_id", Message: "membership_id must be a valid UUID"}
	}
	payment, err := start(c.Request().Context(), id.AcademyID, id.UserID, membershipID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// Receipt renders the PDF receipt of a PAID payment.
func (h *PaymentHandlers) Receipt(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	paymentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	pdf, err := h.paymentService.Receipt(c.Request().Context(), id.AcademyID, paymentID, ownerScope(id))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=receipt-%s.pdf", paymentID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ownerScope restricts student lookups to their own records.
func ownerScope(id identity) *uuid.UUID {
	if id.Role == models.RoleStudent {
		return &id.UserID
	}
	return nil
}
