package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodCreditCard   = "CREDIT_CARD"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCheck        = "CHECK"
)

// Estados del registro de pago.
const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusRefunded  = "REFUNDED" // registro de reembolso (monto negativo)
)

// Payment registro append-only de pago o reembolso.
// Un reembolso tiene Amount negativo y RefundOfID apuntando al pago original.
type Payment struct {
	ID            string
	InvoiceID     string
	CustomerID    string
	Amount        decimal.Decimal
	PaymentMethod string
	TransactionID string
	Status        string
	Notes         string
	RefundOfID    string
	CreatedBy     string
	CreatedAt     time.Time
}

// IsRefund indica si el registro es un reembolso.
func (p *Payment) IsRefund() bool {
	return p.RefundOfID != "" || p.Amount.IsNegative()
}
