package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dojohub/internal/services"
)

// CurriculumHandlers serves belts, their curriculum items, promotions and
// the students' progress along the belt ladder.
type CurriculumHandlers struct {
	curriculumService services.CurriculumService
}

func NewCurriculumHandlers(curriculumService services.CurriculumService) *CurriculumHandlers {
	return &CurriculumHandlers{curriculumService: curriculumService}
}

func (h *CurriculumHandlers) ListBelts(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	belts, err := h.curriculumService.ListBelts(c.Request().Context(), id.AcademyID, c.QueryParam("discipline"))
	if err != nil {
		return err
	}
	return listResponse(c, belts, len(belts), 0, 0)
}

func (h *CurriculumHandlers) GetBelt(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	beltID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	belt, err := h.curriculumService.GetBelt(c.Request().Context(), id.AcademyID, beltID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, belt)
}

func (h *CurriculumHandlers) CreateBelt(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.BeltRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	belt, err := h.curriculumService.CreateBelt(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, belt)
}

func (h *CurriculumHandlers) UpdateBelt(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	beltID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.BeltRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	belt, err := h.curriculumService.UpdateBelt(c.Request().Context(), id.AcademyID, beltID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, belt)
}

func (h *CurriculumHandlers) DeleteBelt(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	beltID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.curriculumService.DeleteBelt(c.Request().Context(), id.AcademyID, beltID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListItems lists the curriculum of the belt in :id.
func (h *CurriculumHandlers) ListItems(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	beltID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.curriculumService.ListItems(c.Request().Context(), id.AcademyID, beltID)
	if err != nil {
		return err
	}
	return listResponse(c, items, len(items), 0, 0)
}

func (h *CurriculumHandlers) GetItem(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.curriculumService.GetItem(c.Request().Context(), id.AcademyID, itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CurriculumHandlers) CreateItem(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.CurriculumItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.curriculumService.CreateItem(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CurriculumHandlers) UpdateItem(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.CurriculumItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.curriculumService.UpdateItem(c.Request().Context(), id.AcademyID, itemID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CurriculumHandlers) DeleteItem(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.curriculumService.DeleteItem(c.Request().Context(), id.AcademyID, itemID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CurriculumHandlers) Promote(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.PromoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	promotion, err := h.curriculumService.Promote(c.Request().Context(), id.AcademyID, id.UserID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, promotion)
}

// ListPromotions lists the promotion history of the student in :id.
func (h *CurriculumHandlers) ListPromotions(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	promotions, err := h.curriculumService.ListPromotions(c.Request().Context(), id.AcademyID, userID)
	if err != nil {
		return err
	}
	return listResponse(c, promotions, len(promotions), 0, 0)
}

// StudentProgress is the admin view of a student's progress.
func (h *CurriculumHandlers) StudentProgress(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	return h.progress(c, id, userID)
}

// MyProgress reports the caller's belt, the next belt and its curriculum.
func (h *CurriculumHandlers) MyProgress(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	return h.progress(c, id, id.UserID)
}

func (h *CurriculumHandlers) progress(c echo.Context, id identity, userID uuid.UUID) error {
	progress, err := h.curriculumService.Progress(c.Request().Context(), id.AcademyID, userID, c.QueryParam("discipline"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}
