package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/image-moderation-service/internal/auth"
	"github.com/spec-kit/image-moderation-service/internal/config"
	"github.com/spec-kit/image-moderation-service/internal/domain"
	"github.com/spec-kit/image-moderation-service/internal/repository"
	apperrors "github.com/spec-kit/image-moderation-service/pkg/util"
)

// TokenService coordinates credential issuance, listing and revocation.
type TokenService struct {
	credentials   repository.CredentialRepository
	tokenMgr      *auth.TokenManager
	adminUsername string
	adminHash     string
}

// TokenDependencies encapsulates repo requirements for the token service.
type TokenDependencies struct {
	CredentialRepo repository.CredentialRepository
}

// NewTokenService builds the service. The operator-configured admin
// password is hashed once here so login comparisons never touch the
// plaintext config value again.
func NewTokenService(cfg config.Config, deps TokenDependencies) (*TokenService, error) {
	hash, err := auth.HashPassword(cfg.Admin.Password, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &TokenService{
		credentials:   deps.CredentialRepo,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		adminUsername: cfg.Admin.Username,
		adminHash:     hash,
	}, nil
}

// Login checks the configured admin username/password and mints an
// admin-flagged credential.
func (s *TokenService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passwordOK := auth.ComparePassword(s.adminHash, password) == nil
	if !usernameOK || !passwordOK {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueAndStore(ctx, true)
}

// CreateToken issues and stores a new credential with the requested admin
// flag. Caller authorization is enforced at the route layer.
func (s *TokenService) CreateToken(ctx context.Context, isAdmin bool) (string, time.Time, error) {
	return s.issueAndStore(ctx, isAdmin)
}

// ListTokens returns every stored credential record.
func (s *TokenService) ListTokens(ctx context.Context) ([]domain.Credential, error) {
	return s.credentials.ListAll(ctx)
}

// RevokeToken deletes the store record for the token. The signed token
// stays verifiable until expiry, but loses all admin privilege.
func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	count, err := s.credentials.Delete(ctx, token)
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NewNotFound("token", nil)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *TokenService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// issueAndStore signs a credential for a fresh random subject identity and
// records it. The existence check before insert is not atomic with it; a
// racing duplicate still surfaces as a conflict via the unique constraint.
func (s *TokenService) issueAndStore(ctx context.Context, isAdmin bool) (string, time.Time, error) {
	token, expiresAt, err := s.tokenMgr.Issue(uuid.NewString(), isAdmin)
	if err != nil {
		return "", time.Time{}, err
	}

	if _, err := s.credentials.Find(ctx, token); err == nil {
		return "", time.Time{}, apperrors.NewConflict("token already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, err
	}

	cred := &domain.Credential{
		Token:     token,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.credentials.Insert(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicateCredential) {
			return "", time.Time{}, apperrors.NewConflict("token already exists", nil)
		}
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
