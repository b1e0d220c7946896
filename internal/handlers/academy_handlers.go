package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

// AcademyHandlers serves the academy settings, branding and bank accounts.
type AcademyHandlers struct {
	academyService     services.AcademyService
	brandingService    services.BrandingService
	bankAccountService services.BankAccountService
}

func NewAcademyHandlers(academyService services.AcademyService, brandingService services.BrandingService, bankAccountService services.BankAccountService) *AcademyHandlers {
	return &AcademyHandlers{
		academyService:     academyService,
		brandingService:    brandingService,
		bankAccountService: bankAccountService,
	}
}

func (h *AcademyHandlers) GetAcademy(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	academy, err := h.academyService.GetAcademy(c.Request().Context(), id.AcademyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, academy)
}

func (h *AcademyHandlers) UpdateAcademy(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.UpdateAcademyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	academy, err := h.academyService.UpdateAcademy(c.Request().Context(), id.AcademyID, id.UserID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, academy)
}

// PublicBranding is served without authentication for the login page.
func (h *AcademyHandlers) PublicBranding(c echo.Context) error {
	branding, err := h.brandingService.GetPublicBranding(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=300")
	return c.JSON(http.StatusOK, branding)
}

func (h *AcademyHandlers) GetBranding(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	branding, err := h.brandingService.GetBranding(c.Request().Context(), id.AcademyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, branding)
}

func (h *AcademyHandlers) UpdateBranding(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.UpdateBrandingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	branding, err := h.brandingService.UpdateBranding(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, branding)
}

// UploadLogo expects the image in the "logo" multipart field.
func (h *AcademyHandlers) UploadLogo(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	logo, closeFile, err := formUpload(c, "logo", true)
	if err != nil {
		return err
	}
	defer closeFile()

	branding, err := h.brandingService.UploadLogo(c.Request().Context(), id.AcademyID, logo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, branding)
}

func (h *AcademyHandlers) ListBankAccounts(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	// students only ever see the accounts they can transfer to
	activeOnly := queryBool(c, "active", false) || id.Role == models.RoleStudent
	accounts, err := h.bankAccountService.ListBankAccounts(c.Request().Context(), id.AcademyID, activeOnly)
	if err != nil {
		return err
	}
	return listResponse(c, accounts, len(accounts), 0, 0)
}

func (h *AcademyHandlers) GetBankAccount(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	accountID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	account, err := h.bankAccountService.GetBankAccount(c.Request().Context(), id.AcademyID, accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AcademyHandlers) CreateBankAccount(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.BankAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	account, err := h.bankAccountService.CreateBankAccount(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *AcademyHandlers) UpdateBankAccount(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	accountID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.BankAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	account, err := h.bankAccountService.UpdateBankAccount(c.Request().Context(), id.AcademyID, accountID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AcademyHandlers) DeleteBankAccount(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	accountID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.bankAccountService.DeleteBankAccount(c.Request().Context(), id.AcademyID, accountID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
