package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token cannot be parsed or verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the custom claims carried by issued tokens. UID is the numeric
// user record ID, matching the uid used throughout the API and chat protocol.
type Claims struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the signed tokens handed out by /users/token.
// Access and refresh tokens are the same credential with different lifetimes;
// its Verify method is the credential verifier consumed by the chat relay.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a Manager signing with secret.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken signs a short-lived token for uid.
func (m *Manager) IssueAccessToken(uid int64) (string, error) {
	return m.issue(uid, m.accessTTL)
}

// IssueRefreshToken signs a long-lived token for uid.
func (m *Manager) IssueRefreshToken(uid int64) (string, error) {
	return m.issue(uid, m.refreshTTL)
}

func (m *Manager) issue(uid int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify parses and validates a token issued by this manager and returns the
// uid it was issued to.
func (m *Manager) Verify(tokenString string) (int64, error) {
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UID, nil
}
