package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dojohub/internal/models"
	"dojohub/internal/services"
)

// ContentHandlers serves channels and their content. Students only see
// published content; documents come back with presigned URLs.
type ContentHandlers struct {
	contentService services.ContentService
}

func NewContentHandlers(contentService services.ContentService) *ContentHandlers {
	return &ContentHandlers{contentService: contentService}
}

func (h *ContentHandlers) ListChannels(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	channels, err := h.contentService.ListChannels(c.Request().Context(), id.AcademyID, id.Role)
	if err != nil {
		return err
	}
	return listResponse(c, channels, len(channels), 0, 0)
}

func (h *ContentHandlers) GetChannel(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	channelID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	channel, err := h.contentService.GetChannel(c.Request().Context(), id.AcademyID, channelID, id.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channel)
}

func (h *ContentHandlers) CreateChannel(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.ChannelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	channel, err := h.contentService.CreateChannel(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, channel)
}

func (h *ContentHandlers) UpdateChannel(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	channelID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ChannelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	channel, err := h.contentService.UpdateChannel(c.Request().Context(), id.AcademyID, channelID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channel)
}

func (h *ContentHandlers) DeleteChannel(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	channelID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contentService.DeleteChannel(c.Request().Context(), id.AcademyID, channelID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContentHandlers) ListContents(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	filters := &models.ContentFilters{PublishedOnly: queryBool(c, "published", false)}
	if filters.ChannelID, err = queryUUID(c, "channel_id"); err != nil {
		return err
	}
	if filters.BeltID, err = queryUUID(c, "belt_id"); err != nil {
		return err
	}
	contents, err := h.contentService.ListContents(c.Request().Context(), id.AcademyID, id.Role, filters)
	if err != nil {
		return err
	}
	return listResponse(c, contents, len(contents), 0, 0)
}

func (h *ContentHandlers) GetContent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	contentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	content, err := h.contentService.GetContent(c.Request().Context(), id.AcademyID, contentID, id.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

func (h *ContentHandlers) CreateContent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req services.ContentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content, err := h.contentService.CreateContent(c.Request().Context(), id.AcademyID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, content)
}

func (h *ContentHandlers) UpdateContent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	contentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req services.ContentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content, err := h.contentService.UpdateContent(c.Request().Context(), id.AcademyID, contentID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

// UploadDocument attaches the "file" field to a DOCUMENT content.
func (h *ContentHandlers) UploadDocument(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	contentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c, "file", true)
	if err != nil {
		return err
	}
	defer closeFile()

	content, err := h.contentService.UploadDocument(c.Request().Context(), id.AcademyID, contentID, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

func (h *ContentHandlers) DeleteContent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	contentID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contentService.DeleteContent(c.Request().Context(), id.AcademyID, contentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
