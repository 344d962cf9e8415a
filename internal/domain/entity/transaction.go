package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y categorías de asientos del libro mayor.
const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"

	CategorySales         = "SALES"
	CategorySalesPipeline = "SALES_PIPELINE"
)

// SaleReferencePrefix prefijo de la referencia determinística del asiento de venta.
const SaleReferencePrefix = "SALE-"

// SaleReference devuelve la referencia única del asiento de venta de una factura.
func SaleReference(invoiceID string) string {
	return SaleReferencePrefix + invoiceID
}

// Transaction asiento del libro mayor (ingreso o gasto).
// ReferenceID es único: permite el upsert idempotente.
type Transaction struct {
	ID            string
	ReferenceID   string
	Type          string
	Category      string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Date          time.Time
	PaymentMethod string
	CustomerID    string
	InvoiceID     string
	BranchID      string
	Metadata      Metadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
