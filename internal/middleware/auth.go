package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/auth"
	"github.com/zenigame/zenigame/internal/domain"
	"github.com/zenigame/zenigame/internal/token"
)

const UserContextKey = "user"

// Auth creates a middleware that protects routes that require authentication.
// Two schemes are accepted on the Authorization header: Bearer with a signed
// token, and Basic with username (or email) and password. Basic is what a
// client uses to obtain its first token pair.
//
// All failures surface as domain.ErrInvalidCredentials; the central error
// handler turns that into a 403 so browsers never pop a credentials dialog.
func Auth(users domain.UserRepository, tokens *token.Manager, hasher *auth.PasswordHasher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			var user *domain.User
			switch {
			case strings.HasPrefix(header, "Bearer "):
				uid, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
				if err != nil {
					return domain.ErrInvalidCredentials
				}
				user, err = users.GetByID(c.Request().Context(), uid)
				if err != nil {
					return domain.ErrInvalidCredentials
				}

			case strings.HasPrefix(header, "Basic "):
				username, password, ok := c.Request().BasicAuth()
				if !ok {
					return domain.ErrInvalidCredentials
				}
				var err error
				user, err = users.GetByUsername(c.Request().Context(), username)
				if err != nil {
					// The login field doubles as an email address.
					user, err = users.GetByEmail(c.Request().Context(), username)
				}
				if err != nil || !hasher.Verify(password, user.PasswordHash) {
					return domain.ErrInvalidCredentials
				}

			default:
				return domain.ErrInvalidCredentials
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user placed in the context by Auth.
// It panics if called from a route the Auth middleware does not cover.
func CurrentUser(c echo.Context) *domain.User {
	return c.Get(UserContextKey).(*domain.User)
}
