package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

func newTestManager(now time.Time) *Manager {
	m := NewManager("test-secret-0123456789abcdef", "kidsbook", 15*time.Minute, 7*24*time.Hour)
	m.now = func() time.Time { return now }
	return m
}

func TestManager_TokenPair(t *testing.T) {
	now := time.Now()
	m := newTestManager(now)
	userID := uuid.New()

	pair, err := m.GenerateTokenPair(userID, "alice@example.com", "User")
	require.NoError(t, err)
	assert.EqualValues(t, 900, pair.ExpiresIn)

	t.Run("解析Access Token", func(t *testing.T) {
		claims, err := m.ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)

		uid, err := claims.UID()
		require.NoError(t, err)
		assert.Equal(t, userID, uid)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, ScopeAccess, claims.Scope)
		assert.NotEmpty(t, claims.ID)
		assert.InDelta(t, (15 * time.Minute).Seconds(), claims.TTL(now).Seconds(), 1)
	})

	t.Run("用途不能混用", func(t *testing.T) {
		_, err := m.ParseAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

		_, err = m.ParseRefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

		claims, err := m.ParseRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Empty(t, claims.Email, "Refresh Token只带user_id")
	})

	t.Run("每次签发都不同", func(t *testing.T) {
		again, err := m.GenerateTokenPair(userID, "alice@example.com", "User")
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, again.RefreshToken)
	})
}

func TestManager_Invalid(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	m := newTestManager(issuedAt)
	pair, err := m.GenerateTokenPair(uuid.New(), "", "User")
	require.NoError(t, err)

	t.Run("过期", func(t *testing.T) {
		later := newTestManager(time.Now())
		_, err := later.ParseAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("密钥不同", func(t *testing.T) {
		other := NewManager("another-secret", "kidsbook", time.Hour, time.Hour)
		other.now = func() time.Time { return issuedAt }
		_, err := other.ParseAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("签发者不同", func(t *testing.T) {
		other := NewManager("test-secret-0123456789abcdef", "someone-else", time.Hour, time.Hour)
		other.now = func() time.Time { return issuedAt }
		_, err := other.ParseAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := m.ParseAccessToken("not.a.token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
