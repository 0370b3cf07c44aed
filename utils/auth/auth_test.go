package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "test",
	})
}

func TestGenerateAndValidateSessionToken(t *testing.T) {
	m := newTestManager()

	token, jti, expiresAt, err := m.GenerateSessionToken("admin", true)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "test", claims.Issuer)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	token, _, _, err := newTestManager().GenerateSessionToken("admin", true)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another", Expiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	m := newTestManager()
	token, _, _, err := m.GenerateSessionToken("admin", false)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := newTestManager().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMatchPasswordPlain(t *testing.T) {
	assert.True(t, MatchPassword("admin123", "admin123", false))
	assert.False(t, MatchPassword("admin123", "Admin123", false))
	assert.False(t, MatchPassword("admin123", "", false))
	assert.False(t, MatchPassword("admin123", "admin1234", false))
}

func TestMatchPasswordHashed(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := string(hash)

	assert.True(t, IsBcryptHash(stored))
	assert.True(t, MatchPassword(stored, "admin123", true))
	assert.False(t, MatchPassword(stored, "wrong", true))

	// hashing disabled: only the literal stored value matches
	assert.False(t, MatchPassword(stored, "admin123", false))
	assert.True(t, MatchPassword(stored, stored, false))
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(hash))
	assert.True(t, MatchPassword(hash, "admin123", true))
}
