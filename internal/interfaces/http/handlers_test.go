package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/application/billing"
	"github.com/elhamd/elhamd-api/internal/application/dto"
	"github.com/elhamd/elhamd-api/internal/application/finance"
	"github.com/elhamd/elhamd-api/internal/application/fulfillment"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/infrastructure/gateway"
	"github.com/elhamd/elhamd-api/internal/infrastructure/memory"
	"github.com/elhamd/elhamd-api/internal/infrastructure/pdf"
	"github.com/elhamd/elhamd-api/internal/observability"
	apphttp "github.com/elhamd/elhamd-api/internal/interfaces/http"
	pkgjwt "github.com/elhamd/elhamd-api/pkg/jwt"
)

// ── API de prueba sobre el store en memoria ───────────────────────────────────

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

type nopScheduler struct{}

func (nopScheduler) ScheduleReconcile(context.Context, string) error { return nil }

type testAPI struct {
	app   *fiber.App
	store *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	store.PutInventory(entity.InventoryItem{ID: "P1", Name: "Pastillas de freno", Quantity: 10, MinStockLevel: 2, Status: entity.InventoryStatusInStock})
	store.PutVehicle(entity.Vehicle{ID: "V1", StockNumber: "STK-1", Make: "Kia", Model: "Sportage", Status: entity.VehicleStatusAvailable})

	metrics := observability.NewMetrics()
	engine := fulfillment.NewEngine(fulfillment.Options{Logger: zerolog.Nop(), Recorder: metrics})
	invoiceUC := billing.NewInvoiceUseCase(store, engine, nopScheduler{}, billing.InvoiceConfig{Prefix: "INV", DefaultCurrency: "EGP"}, zerolog.Nop())
	paymentUC := billing.NewPaymentUseCase(store, engine, nopLocker{}, gateway.NewSimulated(), nopScheduler{}, metrics,
		billing.PaymentConfig{LockTTL: time.Second}, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		InvoiceUC:   invoiceUC,
		PaymentUC:   paymentUC,
		PDFUC:       billing.NewPDFUseCase(store.Repositories().Invoices, pdf.NewMarotoPDFGenerator(""), false),
		FinanceUC:   finance.NewOverviewUseCase(store, zerolog.Nop()),
		Metrics:     metrics,
		JWTSecret:   testJWTSecret,
		ServiceName: "elhamd-test",
	})
	return &testAPI{app: app, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	return a.doBranch(t, method, path, role, "", body)
}

func (a *testAPI) doBranch(t *testing.T, method, path, role, branch string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		tok, err := pkgjwt.Generate(testJWTSecret, testUserID, branch, role, testIssuer, testExpMin)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func saleBody(status string) map[string]any {
	return map[string]any{
		"customer_id": "cust-1",
		"status":      status,
		"items": []map[string]any{
			{"description": "Pastillas", "quantity": 2, "unit_price": 100, "item_type": "PART", "inventory_item_id": "P1"},
			{"description": "Kia Sportage", "quantity": 1, "unit_price": 1000, "item_type": "VEHICLE", "vehicle_id": "V1"},
		},
	}
}

func (a *testAPI) createInvoice(t *testing.T, status string) dto.InvoiceResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/invoices", pkgjwt.RoleSales, saleBody(status))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.InvoiceResponse](t, resp)
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health", "", nil).StatusCode)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/metrics", "", nil).StatusCode)
}

func TestInvoices_SinToken(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/invoices", "", nil).StatusCode)
}

func TestInvoices_CrearEnviadaAplicaEfectos(t *testing.T) {
	api := newTestAPI(t)
	inv := api.createInvoice(t, entity.InvoiceStatusSent)

	assert.Equal(t, entity.InvoiceStatusSent, inv.Status)
	assert.Equal(t, "1200", inv.TotalAmount.String())
	p1, _ := api.store.Inventory("P1")
	assert.Equal(t, 8, p1.Quantity)
	v1, _ := api.store.Vehicle("V1")
	assert.Equal(t, entity.VehicleStatusReserved, v1.Status)

	resp := api.do(t, http.MethodGet, "/api/invoices/"+inv.ID, pkgjwt.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.InvoiceResponse](t, resp)
	assert.Len(t, got.Items, 2)
}

func TestInvoices_ValidacionDevuelveCampos(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/invoices", pkgjwt.RoleSales, map[string]any{"customer_id": "cust-1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Fields, "items")
}

func TestInvoices_NoEncontrada(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/invoices/no-existe", pkgjwt.RoleSales, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestInvoices_TransicionInvalidaEsConflicto(t *testing.T) {
	api := newTestAPI(t)
	inv := api.createInvoice(t, entity.InvoiceStatusSent)
	resp := api.do(t, http.MethodPatch, "/api/invoices/"+inv.ID+"/status", pkgjwt.RoleSales, map[string]string{"status": "DRAFT"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, resp).Code)
}

func TestInvoices_DeleteSoloAdmin(t *testing.T) {
	api := newTestAPI(t)
	inv := api.createInvoice(t, entity.InvoiceStatusSent)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodDelete, "/api/invoices/"+inv.ID, pkgjwt.RoleSales, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/invoices/"+inv.ID, pkgjwt.RoleAdmin, nil).StatusCode)

	p1, _ := api.store.Inventory("P1")
	assert.Equal(t, 10, p1.Quantity)
	v1, _ := api.store.Vehicle("V1")
	assert.Equal(t, entity.VehicleStatusAvailable, v1.Status)
}

func TestInvoices_PDF(t *testing.T) {
	api := newTestAPI(t)
	draft := api.createInvoice(t, entity.InvoiceStatusDraft)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/invoices/"+draft.ID+"/pdf", pkgjwt.RoleSales, nil).StatusCode)

	sent := api.createInvoice(t, entity.InvoiceStatusSent)
	resp := api.do(t, http.MethodGet, "/api/invoices/"+sent.ID+"/pdf", pkgjwt.RoleSales, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestPayments_FlujoCompleto(t *testing.T) {
	api := newTestAPI(t)
	inv := api.createInvoice(t, entity.InvoiceStatusSent)
	path := "/api/invoices/" + inv.ID + "/payments"

	assert.Equal(t, http.StatusForbidden,
		api.do(t, http.MethodPost, path, pkgjwt.RoleSales, map[string]any{"amount": 100, "method": "CASH"}).StatusCode)

	resp := api.do(t, http.MethodPost, path, pkgjwt.RoleAccountant, map[string]any{"amount": 5000, "method": "CASH"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, path, pkgjwt.RoleAccountant, map[string]any{"amount": 1200, "method": "CREDIT_CARD"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.PaymentResultResponse](t, resp)
	assert.Equal(t, entity.InvoiceStatusPaid, res.InvoiceStatus)
	assert.True(t, res.Balance.IsZero())
	assert.Regexp(t, `^CARD-[0-9A-F]{12}$`, res.Payment.TransactionID)

	v1, _ := api.store.Vehicle("V1")
	assert.Equal(t, entity.VehicleStatusSold, v1.Status)

	resp = api.do(t, http.MethodGet, path, pkgjwt.RoleSales, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.PaymentResponse](t, resp), 1)

	resp = api.do(t, http.MethodPost, "/api/payments/"+res.Payment.ID+"/refund", pkgjwt.RoleAccountant, map[string]any{"amount": 200})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	refund := decode[dto.PaymentResultResponse](t, resp)
	assert.Equal(t, "-200", refund.Payment.Amount.String())
	assert.Regexp(t, `^RF-CARD-`, refund.Payment.TransactionID)
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, refund.InvoiceStatus)

	// con pagos registrados la baja es un conflicto
	assert.Equal(t, http.StatusConflict,
		api.do(t, http.MethodDelete, "/api/invoices/"+inv.ID, pkgjwt.RoleAdmin, nil).StatusCode)
}

func TestFinance_OverviewYAlcancePorSucursal(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/finance/overview?period=month", pkgjwt.RoleSales, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/finance/overview?period=month", pkgjwt.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ov := decode[dto.FinanceOverview](t, resp)
	assert.Equal(t, "month", ov.Period)

	resp = api.doBranch(t, http.MethodGet, "/api/finance/overview?branch_id=alex", pkgjwt.RoleAccountant, "cairo", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/finance/overview?period=decade", pkgjwt.RoleAccountant, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/finance/trend?months=3", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.MonthlyPoint](t, resp), 3)
}
