package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/image-moderation-service/internal/config"
	"github.com/spec-kit/image-moderation-service/internal/domain"
	"github.com/spec-kit/image-moderation-service/internal/repository"
	apperrors "github.com/spec-kit/image-moderation-service/pkg/util"
)

type memCredentialRepo struct {
	mu        sync.Mutex
	records   map[string]domain.Credential
	insertErr error
	findAll   bool
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{records: make(map[string]domain.Credential)}
}

func (m *memCredentialRepo) Insert(_ context.Context, cred *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.records[cred.Token]; ok {
		return repository.ErrDuplicateCredential
	}
	m.records[cred.Token] = *cred
	return nil
}

func (m *memCredentialRepo) Find(_ context.Context, token string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findAll {
		return &domain.Credential{Token: token}, nil
	}
	cred, ok := m.records[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &cred, nil
}

func (m *memCredentialRepo) Delete(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[token]; !ok {
		return 0, nil
	}
	delete(m.records, token)
	return 1, nil
}

func (m *memCredentialRepo) ListAll(_ context.Context) ([]domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds := make([]domain.Credential, 0, len(m.records))
	for _, cred := range m.records {
		creds = append(creds, cred)
	}
	return creds, nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
		Admin: config.AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
	}
}

func newTestTokenService(t *testing.T, repo repository.CredentialRepository) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testConfig(), TokenDependencies{CredentialRepo: repo})
	require.NoError(t, err)
	return svc
}

func TestTokenService_Login(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := newTestTokenService(t, repo)
	ctx := context.Background()

	t.Run("success stores admin credential", func(t *testing.T) {
		token, expiresAt, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

		stored, err := repo.Find(ctx, token)
		require.NoError(t, err)
		assert.True(t, stored.IsAdmin)
		assert.False(t, stored.CreatedAt.IsZero())

		claims, err := svc.TokenManager().Parse(token)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin)
		assert.NotEmpty(t, claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "admin", "wrong")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("wrong username", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "root", "admin123")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
	})
}

func TestTokenService_LoginTokensAreUnique(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := newTestTokenService(t, repo)
	ctx := context.Background()

	first, _, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	second, _, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenService_CreateToken(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := newTestTokenService(t, repo)
	ctx := context.Background()

	token, _, err := svc.CreateToken(ctx, false)
	require.NoError(t, err)

	stored, err := repo.Find(ctx, token)
	require.NoError(t, err)
	assert.False(t, stored.IsAdmin)

	claims, err := svc.TokenManager().Parse(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestTokenService_CreateTokenConflicts(t *testing.T) {
	t.Run("existence check hit", func(t *testing.T) {
		repo := newMemCredentialRepo()
		repo.findAll = true
		svc := newTestTokenService(t, repo)

		_, _, err := svc.CreateToken(context.Background(), false)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("insert unique violation", func(t *testing.T) {
		repo := newMemCredentialRepo()
		repo.insertErr = repository.ErrDuplicateCredential
		svc := newTestTokenService(t, repo)

		_, _, err := svc.CreateToken(context.Background(), false)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperrors.ToDomainError(err).HTTPStatus)
	})

	t.Run("insert failure passes through", func(t *testing.T) {
		repo := newMemCredentialRepo()
		repo.insertErr = errors.New("connection reset")
		svc := newTestTokenService(t, repo)

		_, _, err := svc.CreateToken(context.Background(), false)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperrors.ToDomainError(err).HTTPStatus)
	})
}

func TestTokenService_ListTokens(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := newTestTokenService(t, repo)
	ctx := context.Background()

	admin, _, err := svc.CreateToken(ctx, true)
	require.NoError(t, err)
	user, _, err := svc.CreateToken(ctx, false)
	require.NoError(t, err)

	creds, err := svc.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)

	byToken := map[string]bool{}
	for _, cred := range creds {
		byToken[cred.Token] = cred.IsAdmin
	}
	assert.True(t, byToken[admin])
	assert.False(t, byToken[user])
}

func TestTokenService_RevokeTokenTwice(t *testing.T) {
	repo := newMemCredentialRepo()
	svc := newTestTokenService(t, repo)
	ctx := context.Background()

	token, _, err := svc.CreateToken(ctx, false)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(ctx, token))

	err = svc.RevokeToken(ctx, token)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
}
