package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	tok, err := m.IssueAccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uid, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
}

func TestManager_VerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "definitely-not-a-token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJ1aWQiOjQyfQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestManager_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, 24*time.Hour)
	verifier := NewManager("secret-b", time.Hour, 24*time.Hour)

	tok, err := issuer.IssueAccessToken(7)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_VerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 24*time.Hour)

	tok, err := m.IssueAccessToken(7)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_RefreshTokenOutlivesAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)

	access, err := m.IssueAccessToken(7)
	require.NoError(t, err)
	refresh, err := m.IssueRefreshToken(7)
	require.NoError(t, err)

	accessClaims := parseClaims(t, m, access)
	refreshClaims := parseClaims(t, m, refresh)
	assert.True(t, refreshClaims.ExpiresAt.After(accessClaims.ExpiresAt.Time))
}

func parseClaims(t *testing.T, m *Manager, tok string) *Claims {
	t.Helper()
	uid, err := m.Verify(tok)
	require.NoError(t, err)
	require.NotZero(t, uid)

	// Re-parse for the registered claims; Verify already checked the signature.
	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	return claims
}
