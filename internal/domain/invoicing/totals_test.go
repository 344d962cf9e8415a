package invoicing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	items := []*entity.InvoiceItem{
		{Quantity: dec("2"), UnitPrice: dec("150"), TaxRate: dec("14")},
		{Quantity: dec("1"), UnitPrice: dec("1000"), Discount: dec("100"), TaxRate: dec("0.14")},
		{Quantity: dec("1"), UnitPrice: dec("50")},
	}
	totals := invoicing.ComputeTotals(items)

	assert.True(t, dec("300").Equal(items[0].TotalPrice))
	assert.True(t, dec("42").Equal(items[0].TaxAmount))
	assert.True(t, dec("900").Equal(items[1].TotalPrice))
	assert.True(t, dec("14").Equal(items[1].TaxRate), "0.14 se normaliza a 14%%")
	assert.True(t, dec("126").Equal(items[1].TaxAmount))

	assert.True(t, dec("1250").Equal(totals.Subtotal))
	assert.True(t, dec("168").Equal(totals.TaxAmount))
	assert.True(t, dec("100").Equal(totals.Discount))
	assert.True(t, dec("1418").Equal(totals.TotalAmount))
	assert.True(t, totals.TotalAmount.Equal(totals.Subtotal.Add(totals.TaxAmount)))
}

func TestComputeLine_DescuentoMayorQueBrutoQuedaEnCero(t *testing.T) {
	it := &entity.InvoiceItem{Quantity: dec("1"), UnitPrice: dec("10"), Discount: dec("25"), TaxRate: dec("14")}
	invoicing.ComputeLine(it)
	assert.True(t, it.TotalPrice.IsZero())
	assert.True(t, it.TaxAmount.IsZero())
}
