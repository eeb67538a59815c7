package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/image-moderation-service/internal/api/http"
	"github.com/spec-kit/image-moderation-service/internal/auth"
	"github.com/spec-kit/image-moderation-service/internal/domain"
	"github.com/spec-kit/image-moderation-service/internal/observability"
)

type fakeCredentialRepo struct {
	mu      sync.Mutex
	records map[string]domain.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{records: make(map[string]domain.Credential)}
}

func (f *fakeCredentialRepo) Insert(_ context.Context, cred *domain.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[cred.Token] = *cred
	return nil
}

func (f *fakeCredentialRepo) Find(_ context.Context, token string) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.records[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &cred, nil
}

func (f *fakeCredentialRepo) Delete(_ context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[token]; !ok {
		return 0, nil
	}
	delete(f.records, token)
	return 1, nil
}

func (f *fakeCredentialRepo) ListAll(_ context.Context) ([]domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds := make([]domain.Credential, 0, len(f.records))
	for _, cred := range f.records {
		creds = append(creds, cred)
	}
	return creds, nil
}

func newGuardedApp(mw *auth.AuthMiddleware) *fiber.App {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/admin", mw.Handle, mw.RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuthMiddleware_Handle(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 60)
	repo := newFakeCredentialRepo()
	app := newGuardedApp(auth.NewAuthMiddleware(tokens, repo))

	valid, _, err := tokens.Issue("subject-1", false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"malformed token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_RequireAdmin_StoreIsAuthoritative(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 60)
	repo := newFakeCredentialRepo()
	app := newGuardedApp(auth.NewAuthMiddleware(tokens, repo))

	// Signed as admin but never stored: forged-looking or revoked.
	unstored, _, err := tokens.Issue("subject-1", true)
	require.NoError(t, err)

	// Stored but flagged non-admin, claim also says admin.
	demoted, _, err := tokens.Issue("subject-2", true)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), &domain.Credential{
		Token: demoted, IsAdmin: false, CreatedAt: time.Now(),
	}))

	stored, _, err := tokens.Issue("subject-3", true)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), &domain.Credential{
		Token: stored, IsAdmin: true, CreatedAt: time.Now(),
	}))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no store record", unstored, http.StatusForbidden},
		{"record not admin", demoted, http.StatusForbidden},
		{"record admin", stored, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
