package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestMetrics_Contadores(t *testing.T) {
	m := NewMetrics()
	m.ObserveFulfillment("apply", "ok")
	m.ObserveFulfillment("apply", "ok")
	m.ObservePayment("payment", "rejected")
	m.ObserveJob("invoices:overdue_sweep", "ok")

	body := scrape(t, m)
	assert.Contains(t, body, `elhamd_fulfillment_operations_total{op="apply",outcome="ok"} 2`)
	assert.Contains(t, body, `elhamd_payments_total{kind="payment",outcome="rejected"} 1`)
	assert.Contains(t, body, `elhamd_jobs_total{outcome="ok",task="invoices:overdue_sweep"} 1`)
}

func TestMetrics_MiddlewareYHandler(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/invoices/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/invoices/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `elhamd_http_requests_total{code="404",method="GET",route="/api/invoices/:id"} 1`), string(body))
}

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFulfillment("apply", "ok")
		m.ObservePayment("payment", "ok")
		m.ObserveJob("x", "ok")
	})
}
