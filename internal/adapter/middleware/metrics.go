package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"metric-backend/internal/infrastructure/metrics"
)

// Metrics records request count and latency per route template.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Request(route, c.Request().Method, strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
			return nil
		}
	}
}
