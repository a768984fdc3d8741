package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "agenda")

	token, expiresAt, err := tm.GenerateToken("65f0c0ffee0000000000abcd", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee0000000000abcd", claims.UserID())
	assert.Equal(t, "agenda", claims.Issuer)
}

func TestTokenManager_Defaults(t *testing.T) {
	tm := NewTokenManager("", "")
	token, _, err := tm.GenerateToken("u1", time.Minute)
	require.NoError(t, err)

	_, err = NewTokenManager("change-me-in-production", "agenda").ValidateToken(token)
	assert.NoError(t, err)
}

func TestTokenManager_RequiresUserID(t *testing.T) {
	_, _, err := NewTokenManager("s", "i").GenerateToken("", time.Minute)
	assert.Error(t, err)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", "agenda")
	token, _, err := tm.GenerateToken("u1", time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", "agenda").ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokenManager("secret", "someone-else").ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := tm.ValidateToken("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("secret", "agenda")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.GenerateToken("u1", time.Hour)
		require.NoError(t, err)

		_, err = tm.ValidateToken(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractToken(t *testing.T) {
	tok, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = ExtractToken("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = ExtractToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = ExtractToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ExtractToken("Bearer")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
