package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

type EventHandlers struct {
	eventService services.EventService
}

func NewEventHandlers(eventService services.EventService) *EventHandlers {
	return &EventHandlers{eventService: eventService}
}

// ListEvents lists events. Students only see upcoming ones.
func (h *EventHandlers) ListEvents(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	upcoming := queryBool(c, "upcoming", false) || id.Role == models.RoleStudent
	events, err := h.eventService.ListEvents(c.Request().Context(), id.AcademyID, upcoming)
	if err != nil {
		return err
	}
	return listResponse(c, events, len(events), 0, 0)
}

func (h *EventHandlers) GetEvent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.eventService.GetEvent(c.Request().Context(), id.AcademyID, eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandlers) CreateEvent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.eventService.CreateEvent(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandlers) UpdateEvent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.eventService.UpdateEvent(c.Request().Context(), id.AcademyID, eventID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandlers) DeleteEvent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.eventService.DeleteEvent(c.Request().Context(), id.AcademyID, eventID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandlers) ListRegistrations(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	registrations, err := h.eventService.ListRegistrations(c.Request().Context(), id.AcademyID, eventID)
	if err != nil {
		return err
	}
	return listResponse(c, registrations, len(registrations), 0, 0)
}

// Register signs the caller up. A full event answers 409.
func (h *EventHandlers) Register(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	registration, err := h.eventService.Register(c.Request().Context(), id.AcademyID, eventID, id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registration)
}

func (h *EventHandlers) Unregister(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.eventService.Unregister(c.Request().Context(), id.AcademyID, eventID, id.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
