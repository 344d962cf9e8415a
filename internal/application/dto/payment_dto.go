package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest body para POST /api/invoices/:id/payments.
type PaymentRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" validate:"required"`
	Notes      string          `json:"notes,omitempty" validate:"max=1000"`
	CustomerID string          `json:"customer_id,omitempty"`
}

// RefundRequest body para POST /api/payments/:id/refund. Sin Amount se reembolsa el saldo del pago.
type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Notes  string           `json:"notes,omitempty" validate:"max=1000"`
}

// PaymentResponse registro de pago o reembolso.
type PaymentResponse struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoice_id"`
	CustomerID    string          `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	RefundOfID    string          `json:"refund_of_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentResultResponse pago y estado resultante de la factura.
type PaymentResultResponse struct {
	Payment       PaymentResponse `json:"payment"`
	InvoiceStatus string          `json:"invoice_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Balance       decimal.Decimal `json:"balance"`
}
