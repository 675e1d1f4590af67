package middleware

import (
	"crypto/subtle"

	"cryptobot-webhook-relay/internal/apperrors"

	"github.com/labstack/echo/v4"
)

const APIKeyHeader = "X-API-Key"

// APIKeyAuth guards operator endpoints with a static key. An empty key
// leaves the routes open.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if apiKey == "" {
			return next
		}
		return func(c echo.Context) error {
			got := c.Request().Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				return apperrors.ErrUnauthorized
			}
			return next(c)
		}
	}
}
