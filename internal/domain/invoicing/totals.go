package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Totals totales de cabecera calculados desde las líneas.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal
}

// NormalizeTaxRate acepta tasas expresadas como fracción (0.14) o porcentaje (14)
// y devuelve el porcentaje.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsPositive() && rate.LessThan(decimal.NewFromInt(1)) {
		return rate.Mul(hundred)
	}
	return rate
}

// ComputeLine completa TotalPrice y TaxAmount de la línea.
// TotalPrice = Quantity*UnitPrice - Discount (nunca negativo); TaxAmount = TotalPrice*TaxRate/100.
func ComputeLine(item *entity.InvoiceItem) {
	item.TaxRate = NormalizeTaxRate(item.TaxRate)
	gross := item.Quantity.Mul(item.UnitPrice)
	total := gross.Sub(item.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	item.TotalPrice = total.Round(2)
	item.TaxAmount = item.TotalPrice.Mul(item.TaxRate).Div(hundred).Round(2)
}

// ComputeTotals calcula las líneas y agrega la cabecera.
func ComputeTotals(items []*entity.InvoiceItem) Totals {
	var t Totals
	for _, item := range items {
		ComputeLine(item)
		t.Subtotal = t.Subtotal.Add(item.TotalPrice)
		t.TaxAmount = t.TaxAmount.Add(item.TaxAmount)
		t.Discount = t.Discount.Add(item.Discount)
	}
	t.TotalAmount = t.Subtotal.Add(t.TaxAmount)
	return t
}

// TotalsOf reconstruye los totales desde una cabecera ya persistida.
func TotalsOf(inv *entity.Invoice) Totals {
	return Totals{
		Subtotal:    inv.Subtotal,
		TaxAmount:   inv.TaxAmount,
		TotalAmount: inv.TotalAmount,
	}
}
