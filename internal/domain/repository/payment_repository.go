package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// PaymentRepository puerto del registro append-only de pagos y reembolsos.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
	// SumRefunds suma (en positivo) los reembolsos registrados contra un pago.
	SumRefunds(ctx context.Context, paymentID string) (decimal.Decimal, error)
}
