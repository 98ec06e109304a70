package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// Check probes one dependency for /health.
type Check func(ctx context.Context) error

type Handler struct{ checks map[string]Check }

func NewHandler(checks map[string]Check) *Handler { return &Handler{checks: checks} }

// Health reports ok, or 503 with the failing dependency names.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	var failed []string
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed = append(failed, name)
		}
	}
	body := map[string]any{"time": time.Now().UTC().Format(time.RFC3339Nano)}
	if len(failed) > 0 {
		sort.Strings(failed)
		body["status"] = "degraded"
		body["failed"] = failed
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	body["status"] = "ok"
	return c.JSON(http.StatusOK, body)
}
