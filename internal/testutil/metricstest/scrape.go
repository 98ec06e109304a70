// Package metricstest reads a *metrics.Metrics back through its exposition
// handler.
package metricstest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"metric-backend/internal/infrastructure/metrics"
)

// Scrape returns the text exposition of m.
func Scrape(t testing.TB, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	return rec.Body.String()
}

// Has reports whether the exposition of m carries sample exactly, e.g.
// `metric_insurance_payouts_total 1`.
func Has(t testing.TB, m *metrics.Metrics, sample string) bool {
	t.Helper()
	for _, line := range strings.Split(Scrape(t, m), "\n") {
		if line == sample {
			return true
		}
	}
	return false
}

// Mentions reports whether any sample line of m contains fragment.
func Mentions(t testing.TB, m *metrics.Metrics, fragment string) bool {
	t.Helper()
	for _, line := range strings.Split(Scrape(t, m), "\n") {
		if !strings.HasPrefix(line, "#") && strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}
