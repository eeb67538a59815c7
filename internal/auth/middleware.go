package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/image-moderation-service/internal/repository"
	apperrors "github.com/spec-kit/image-moderation-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the duration of one
// request: the decoded claims plus the raw credential string.
type Principal struct {
	Claims *Claims
	Token  string
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens      *TokenManager
	credentials repository.CredentialRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, credentials repository.CredentialRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, credentials: credentials}
}

// Handle enforces authentication for protected routes. Pure validation:
// signature and expiry only, no store access.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Parse(parts[1])
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewUnauthorized("token expired")
		}
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{Claims: claims, Token: parts[1]})
	return c.Next()
}

// RequireAdmin enforces admin authorization after Handle. The store record
// is authoritative: a revoked token or one whose record says non-admin is
// rejected even when the signed claim itself says admin.
func (m *AuthMiddleware) RequireAdmin(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	record, err := m.credentials.Find(c.Context(), principal.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("admin access required")
		}
		return apperrors.MapError(err)
	}
	if !record.IsAdmin {
		return apperrors.NewForbidden("admin access required")
	}
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
