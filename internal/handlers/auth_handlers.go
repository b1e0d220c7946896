package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/services"
)

// AuthHandlers handles academy registration, login and the caller's profile.
type AuthHandlers struct {
	authService    services.AuthService
	academyService services.AcademyService
	userService    services.UserService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, academyService services.AcademyService, userService services.UserService) *AuthHandlers {
	return &AuthHandlers{
		authService:    authService,
		academyService: academyService,
		userService:    userService,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	AcademySlug string `json:"academy_slug" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegisterResponse is returned when a new academy signs up.
type RegisterResponse struct {
	Academy *models.Academy       `json:"academy"`
	User    *models.User          `json:"user"`
	Tokens  *models.TokenResponse `json:"tokens"`
}

// Register creates an academy with its first admin and logs the admin in.
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.RegisterAcademyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	registered, err := h.academyService.RegisterAcademy(ctx, &req)
	if err != nil {
		return err
	}

	tokens, err := h.authService.GenerateTokens(ctx, registered.Admin)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Academy: registered.Academy,
		User:    registered.Admin,
		Tokens:  tokens,
	})
}

// Login handles user login with academy slug, email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(ctx, req.AcademySlug, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokens)
}

// Refresh rotates a refresh token.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the refresh token. It always answers 204.
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err == nil {
		ctx := c.Request().Context()
		if err := h.authService.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("failed to revoke refresh token on logout")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandlers) Me(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetMe(c.Request().Context(), id.AcademyID, id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe updates the caller's profile and, with current_password, the
// password.
func (h *AuthHandlers) UpdateMe(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req services.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), id.AcademyID, id.UserID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
