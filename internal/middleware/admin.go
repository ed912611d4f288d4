package middleware

import (
	"crypto/subtle"
	"net/http"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdminTokenHeader carries the shared secret guarding the admin endpoints.
const AdminTokenHeader = "X-Admin-Token"

// AdminTokenMiddleware rejects requests whose X-Admin-Token header does not
// match the configured shared secret. An empty configured token disables the
// admin surface entirely.
func AdminTokenMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			header := c.Request().Header.Get(AdminTokenHeader)
			if token == "" || header == "" ||
				subtle.ConstantTimeCompare([]byte(header), []byte(token)) != 1 {
				log.Warn("Admin token missing or invalid")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Admin token not provided or invalid",
				})
			}

			return next(c)
		}
	}
}
