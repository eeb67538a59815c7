package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	token, expiresAt, err := tm.Issue("subject-1", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", claims.Subject)
	assert.True(t, claims.IsAdmin)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
}

func TestTokenManager_ParseExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	claims := &Claims{
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = tm.Parse(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_ParseInvalid(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", 60)
		token, _, err := other.Issue("subject-1", false)
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := tm.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "subject-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager(testSecret, 0)
	assert.Equal(t, 60*time.Minute, tm.TTL())
}
