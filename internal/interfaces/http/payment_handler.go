package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/elhamd/elhamd-api/internal/application/billing"
	"github.com/elhamd/elhamd-api/internal/application/dto"
)

// PaymentHandler rutas de pagos y reembolsos.
type PaymentHandler struct {
	uc *billing.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *billing.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Process POST /api/invoices/:id/payments. La factura sale de la ruta.
func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ProcessPayment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/invoices/:id/payments
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListPayments(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Refund POST /api/payments/:id/refund
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	var in dto.RefundRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.RefundPayment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
