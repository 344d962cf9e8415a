package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/elhamd/elhamd-api/internal/application/billing"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

func TestGenerateInvoicePDF(t *testing.T) {
	due := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-202603-0001",
		Status:        entity.InvoiceStatusSent,
		Currency:      "EGP",
		Subtotal:      decimal.NewFromInt(1250),
		TaxAmount:     decimal.NewFromInt(28),
		TotalAmount:   decimal.NewFromInt(1278),
		PaidAmount:    decimal.NewFromInt(300),
		CustomerID:    "cust-1",
		IssueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Notes:         "Entrega en sucursal",
	}
	lines := []appbilling.InvoiceLineForPDF{
		{InvoiceItem: entity.InvoiceItem{
			Description: "Filtro de aceite", Quantity: decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(200), TaxRate: decimal.NewFromInt(14),
		}, ItemType: "PART"},
		{InvoiceItem: entity.InvoiceItem{
			Description: "Sedán 2024", Quantity: decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(1000), TotalPrice: decimal.NewFromInt(1000),
		}, ItemType: "VEHICLE"},
	}

	out, err := NewMarotoPDFGenerator("").GenerateInvoicePDF(context.Background(), inv, lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoPDFGenerator("X").GenerateInvoicePDF(ctx, &entity.Invoice{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMoney(t *testing.T) {
	g := NewMarotoPDFGenerator("")
	assert.Equal(t, "1,278.50", g.money(decimal.RequireFromString("1278.5")))
	assert.Equal(t, "0.00", g.money(decimal.Zero))
}
