package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"metric-backend/pkg/id"
)

const (
	// HeaderUserID carries the caller identity asserted by the upstream auth layer.
	HeaderUserID = "X-User-Id"
	userIDKey    = "user_id"
)

// Auth requires a 32-char hex X-User-Id and stores it on the context.
func Auth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderUserID})
			}
			if !id.IsID32(userID) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid " + HeaderUserID})
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the identity set by Auth, or "".
func UserID(c echo.Context) string {
	v, _ := c.Get(userIDKey).(string)
	return v
}
