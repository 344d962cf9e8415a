package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura de venta.
const (
	InvoiceStatusDraft         = "DRAFT"
	InvoiceStatusSent          = "SENT"
	InvoiceStatusPaid          = "PAID"
	InvoiceStatusPartiallyPaid = "PARTIALLY_PAID"
	InvoiceStatusOverdue       = "OVERDUE"
	InvoiceStatusCancelled     = "CANCELLED"
	InvoiceStatusRefunded      = "REFUNDED"
)

// Claves de auditoría que el motor de cumplimiento escribe en Invoice.Metadata.
const (
	MetaSaleStatus          = "saleStatus"
	MetaSaleStatusUpdatedAt = "saleStatusUpdatedAt"
	MetaInventoryAdjusted   = "inventoryAdjusted"
	MetaInventoryAdjustedAt = "inventoryAdjustedAt"
	MetaInventoryRestored   = "inventoryRestored"
	MetaInventoryRestoredAt = "inventoryRestoredAt"
	MetaPaymentMethod       = "paymentMethod"
)

// Invoice cabecera de la factura.
// Invariantes: PaidAmount <= TotalAmount; TotalAmount = Subtotal + TaxAmount.
type Invoice struct {
	ID            string
	InvoiceNumber string
	Status        string
	Currency      string
	Subtotal      decimal.Decimal // suma de TotalPrice de las líneas (ya con descuentos)
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	CustomerID    string
	BranchID      string // vacío = sin sucursal
	IssueDate     time.Time
	DueDate       *time.Time
	PaidAt        *time.Time
	Notes         string
	Metadata      Metadata
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Balance devuelve el saldo pendiente (TotalAmount - PaidAmount).
func (i *Invoice) Balance() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// InventoryAdjusted indica si el stock ya fue descontado por esta factura.
func (i *Invoice) InventoryAdjusted() bool {
	return i.Metadata.Bool(MetaInventoryAdjusted)
}
