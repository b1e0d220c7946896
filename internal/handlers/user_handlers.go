package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

// UserHandlers serves /admin/students and /admin/coaches. Each handler is
// bound to one role so the two collections never mix.
type UserHandlers struct {
	userService services.UserService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// List handles listing users of role with status, search and pagination.
func (h *UserHandlers) List(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := callerIdentity(c)
		if err != nil {
			return err
		}
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}

		filters := &models.UserFilters{
			Role:   &role,
			Search: c.QueryParam("search"),
			Limit:  limit,
			Offset: offset,
		}
		if status := strings.ToUpper(c.QueryParam("status")); status != "" {
			s := models.UserStatus(status)
			filters.Status = &s
		}

		users, err := h.userService.ListUsers(c.Request().Context(), id.AcademyID, filters)
		if err != nil {
			return err
		}
		return listResponse(c, users, len(users), limit, offset)
	}
}

func (h *UserHandlers) Get(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := callerIdentity(c)
		if err != nil {
			return err
		}
		userID, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		user, err := h.userService.GetUser(c.Request().Context(), id.AcademyID, role, userID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, user)
	}
}

func (h *UserHandlers) Create(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := callerIdentity(c)
		if err != nil {
			return err
		}
		var req services.CreateUserRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		user, err := h.userService.CreateUser(c.Request().Context(), id.AcademyID, role, &req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, user)
	}
}

func (h *UserHandlers) Update(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := callerIdentity(c)
		if err != nil {
			return err
		}
		userID, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		var req services.UpdateUserRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		user, err := h.userService.UpdateUser(c.Request().Context(), id.AcademyID, role, userID, &req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, user)
	}
}

// Deactivate marks the user INACTIVE. Users are never hard deleted.
func (h *UserHandlers) Deactivate(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := callerIdentity(c)
		if err != nil {
			return err
		}
		userID, err := paramUUID(c, "id")
		if err != nil {
			return err
		}
		if err := h.userService.DeactivateUser(c.Request().Context(), id.AcademyID, role, userID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
