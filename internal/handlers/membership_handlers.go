package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

type MembershipHandlers struct {
	membershipService services.MembershipService
}

func NewMembershipHandlers(membershipService services.MembershipService) *MembershipHandlers {
	return &MembershipHandlers{membershipService: membershipService}
}

// MembershipStatusRequest moves a membership to another status.
type MembershipStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TRIAL ACTIVE PAST_DUE EXPIRED CANCELLED"`
}

func (h *MembershipHandlers) ListMemberships(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return err
	}
	userID, err := queryUUID(c, "user_id")
	if err != nil {
		return err
	}

	filters := &models.MembershipFilters{UserID: userID, Limit: limit, Offset: offset}
	if raw := strings.ToUpper(c.QueryParam("status")); raw != "" {
		status := models.MembershipStatus(raw)
		if !status.Valid() {
			return &services.FieldError{Field: "status", Message: "unknown membership status"}
		}
		filters.Status = &status
	}

	memberships, err := h.membershipService.ListMemberships(c.Request().Context(), id.AcademyID, filters)
	if err != nil {
		return err
	}
	return listResponse(c, memberships, len(memberships), limit, offset)
}

func (h *MembershipHandlers) GetMembership(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	membershipID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	membership, err := h.membershipService.GetMembership(c.Request().Context(), id.AcademyID, membershipID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, membership)
}

func (h *MembershipHandlers) CreateMembership(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.CreateMembershipRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	membership, err := h.membershipService.CreateMembership(c.Request().Context(), id.AcademyID, id.UserID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, membership)
}

func (h *MembershipHandlers) ChangeStatus(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	membershipID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req MembershipStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	membership, err := h.membershipService.ChangeStatus(c.Request().Context(), id.AcademyID, id.UserID, membershipID, models.MembershipStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, membership)
}

func (h *MembershipHandlers) CancelMembership(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	membershipID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	membership, err := h.membershipService.CancelMembership(c.Request().Context(), id.AcademyID, id.UserID, membershipID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, membership)
}

// MyMemberships lists the caller's own memberships.
func (h *MembershipHandlers) MyMemberships(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	memberships, err := h.membershipService.ListForUser(c.Request().Context(), id.AcademyID, id.UserID)
	if err != nil {
		return err
	}
	return listResponse(c, memberships, len(memberships), 0, 0)
}
