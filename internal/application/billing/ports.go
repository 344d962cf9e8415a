package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con todos los repos de facturación.
// Repositories devuelve los mismos repos atados al pool (sin transacción).
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(repos repository.Set) error) error
	Repositories() repository.Set
}

// InvoiceLocker lock distribuido por factura. Acquire devuelve domain.ErrInvoiceLocked
// si otra operación lo tiene tomado.
type InvoiceLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// PaymentGateway pasarela por método de pago. Devuelve el id de transacción externo.
type PaymentGateway interface {
	Charge(ctx context.Context, method string, amount decimal.Decimal, reference string) (string, error)
	Refund(ctx context.Context, method, originalTransactionID string, amount decimal.Decimal) (string, error)
}

// ReconcileScheduler encola la reconciliación del libro mayor de una factura.
type ReconcileScheduler interface {
	ScheduleReconcile(ctx context.Context, invoiceID string) error
}

// PaymentRecorder métricas de pagos y reembolsos.
type PaymentRecorder interface {
	ObservePayment(kind, outcome string)
}

// InvoiceLineForPDF línea con el tipo ya resuelto para la representación gráfica.
type InvoiceLineForPDF struct {
	entity.InvoiceItem
	ItemType string
}

// InvoicePDFGenerator genera el PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, lines []InvoiceLineForPDF) ([]byte, error)
}
