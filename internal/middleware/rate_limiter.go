package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per IP for the routes it is applied to. It is
// meant for credential endpoints (registration and token issuance) where
// unauthenticated clients can hammer bcrypt.
func RateLimiter(rps float64) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		// In-memory store, suitable for single-instance deployments.
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(rps)),

		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"code":    3001,
				"message": "too many requests",
			})
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
