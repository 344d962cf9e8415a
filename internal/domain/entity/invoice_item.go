package entity

import "github.com/shopspring/decimal"

// InvoiceItem línea de factura. Se elimina en cascada con la factura.
// Metadata puede traer itemType (SERVICE|PART|VEHICLE), inventoryItemId y vehicleId.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TotalPrice  decimal.Decimal // Quantity*UnitPrice - Discount
	TaxRate     decimal.Decimal // porcentaje (14 = 14%)
	TaxAmount   decimal.Decimal
	Metadata    Metadata
	Position    int
}
