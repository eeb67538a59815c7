package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/image-moderation-service/internal/auth"
	"github.com/spec-kit/image-moderation-service/internal/service"
	apperrors "github.com/spec-kit/image-moderation-service/pkg/util"
)

// ModerationHandler exposes the image moderation endpoint.
type ModerationHandler struct {
	moderation *service.ModerationService
}

// NewModerationHandler constructs handler.
func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderationService}
}

// Moderate handles POST /moderate. Expects a multipart form with a "file"
// part carrying the image bytes.
func (h *ModerationHandler) Moderate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("no file uploaded", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable file", nil)
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewValidationError("unreadable file", nil)
	}

	result, err := h.moderation.Moderate(c.Context(), principal.Token, fileHeader.Filename, image)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
