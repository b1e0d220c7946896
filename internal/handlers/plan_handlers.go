package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

type PlanHandlers struct {
	planService services.PlanService
}

func NewPlanHandlers(planService services.PlanService) *PlanHandlers {
	return &PlanHandlers{planService: planService}
}

// ListPlans lists plans. Students only see active plans.
func (h *PlanHandlers) ListPlans(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	activeOnly := queryBool(c, "active", false) || id.Role == models.RoleStudent
	plans, err := h.planService.ListPlans(c.Request().Context(), id.AcademyID, activeOnly)
	if err != nil {
		return err
	}
	return listResponse(c, plans, len(plans), 0, 0)
}

func (h *PlanHandlers) GetPlan(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	planID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	plan, err := h.planService.GetPlan(c.Request().Context(), id.AcademyID, planID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *PlanHandlers) CreatePlan(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	plan, err := h.planService.CreatePlan(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandlers) UpdatePlan(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	planID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	plan, err := h.planService.UpdatePlan(c.Request().Context(), id.AcademyID, planID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// DeletePlan answers 409 when live memberships still reference the plan.
func (h *PlanHandlers) DeletePlan(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	planID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.planService.DeletePlan(c.Request().Context(), id.AcademyID, planID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
