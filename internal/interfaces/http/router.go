package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/elhamd/elhamd-api/internal/application/billing"
	"github.com/elhamd/elhamd-api/internal/application/finance"
	"github.com/elhamd/elhamd-api/internal/observability"
	"github.com/elhamd/elhamd-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC   *billing.InvoiceUseCase
	PaymentUC   *billing.PaymentUseCase
	PDFUC       *billing.PDFUseCase
	FinanceUC   *finance.OverviewUseCase
	Metrics     *observability.Metrics
	JWTSecret   string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api", deps.Metrics.Middleware(), AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant, jwt.RoleSales)
	cashier := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)

	invoices := api.Group("/invoices")
	invoices.Post("/", anyRole, invoiceHandler.Create)
	invoices.Get("/", anyRole, invoiceHandler.List)
	invoices.Get("/:id", anyRole, invoiceHandler.GetByID)
	invoices.Put("/:id", anyRole, invoiceHandler.Update)
	invoices.Patch("/:id/status", anyRole, invoiceHandler.ChangeStatus)
	invoices.Delete("/:id", RequireRole(jwt.RoleAdmin), invoiceHandler.Delete)
	invoices.Get("/:id/pdf", anyRole, invoiceHandler.DownloadPDF)
	invoices.Post("/:id/payments", cashier, paymentHandler.Process)
	invoices.Get("/:id/payments", anyRole, paymentHandler.List)

	api.Post("/payments/:id/refund", cashier, paymentHandler.Refund)

	financeHandler := NewFinanceHandler(deps.FinanceUC)
	fin := api.Group("/finance", cashier)
	fin.Get("/overview", financeHandler.Overview)
	fin.Get("/trend", financeHandler.Trend)
}
