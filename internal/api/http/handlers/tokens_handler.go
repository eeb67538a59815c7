package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/image-moderation-service/internal/api/dto"
	"github.com/spec-kit/image-moderation-service/internal/auth"
	"github.com/spec-kit/image-moderation-service/internal/service"
	apperrors "github.com/spec-kit/image-moderation-service/pkg/util"
)

// TokensHandler exposes the auth and token management endpoints.
type TokensHandler struct {
	tokens *service.TokenService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(tokenService *service.TokenService) *TokensHandler {
	return &TokensHandler{tokens: tokenService}
}

// Login handles POST /auth/login.
func (h *TokensHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	token, exp, err := h.tokens.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{Token: token, ExpiresAt: exp})
}

// Create handles POST /auth/tokens. Admin only.
func (h *TokensHandler) Create(c *fiber.Ctx) error {
	isAdmin := c.QueryBool("is_admin", false)

	token, exp, err := h.tokens.CreateToken(c.Context(), isAdmin)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.TokenResponse{Token: token, ExpiresAt: exp})
}

// List handles GET /auth/tokens. Admin only.
func (h *TokensHandler) List(c *fiber.Ctx) error {
	creds, err := h.tokens.ListTokens(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(creds)
}

// Revoke handles DELETE /auth/tokens/:token. Admin only.
func (h *TokensHandler) Revoke(c *fiber.Ctx) error {
	token := c.Params("token")
	if err := h.tokens.RevokeToken(c.Context(), token); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "token deleted"})
}

// Verify handles POST /auth/verify. Any authenticated caller may
// introspect its own signed claim; the admin flag reported here is the
// claim value, not the store record.
func (h *TokensHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	return c.JSON(dto.VerifyResponse{Valid: true, IsAdmin: principal.Claims.IsAdmin})
}
