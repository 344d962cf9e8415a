package finance

import (
	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
)

// CategoryInvoices etiqueta de las facturas pagadas que aún no tienen asiento SALE-<id>.
const CategoryInvoices = "INVOICES"

var hundred = decimal.NewFromInt(100)

// Summary agregados de un periodo.
type Summary struct {
	Revenue            decimal.Decimal
	Expenses           decimal.Decimal
	RevenueByCategory  map[string]decimal.Decimal
	ExpensesByCategory map[string]decimal.Decimal
	PaidInvoicesTotal  decimal.Decimal
	PaidInvoicesCount  int
	Pipeline           decimal.Decimal
	Outstanding        decimal.Decimal
}

// NetProfit ingresos menos gastos.
func (s Summary) NetProfit() decimal.Decimal {
	return s.Revenue.Sub(s.Expenses)
}

// ProfitMargin netProfit / revenue; 0 sin ingresos.
func (s Summary) ProfitMargin() decimal.Decimal {
	if s.Revenue.IsZero() {
		return decimal.Zero
	}
	return s.NetProfit().Div(s.Revenue).Round(4)
}

// Summarize agrega asientos y facturas del mismo rango.
// Ingresos: asientos INCOME salvo SALES_PIPELINE, más las facturas PAID sin asiento
// de venta propio (bajo INVOICES), de modo que ninguna factura cuenta dos veces.
func Summarize(txs []*entity.Transaction, invoices []*entity.Invoice) Summary {
	s := Summary{
		RevenueByCategory:  map[string]decimal.Decimal{},
		ExpensesByCategory: map[string]decimal.Decimal{},
	}

	booked := make(map[string]bool, len(txs))
	for _, t := range txs {
		switch t.Type {
		case entity.TransactionTypeIncome:
			if t.Category == entity.CategorySalesPipeline {
				s.Pipeline = s.Pipeline.Add(t.Amount)
				continue
			}
			if t.InvoiceID != "" {
				booked[t.InvoiceID] = true
			}
			s.Revenue = s.Revenue.Add(t.Amount)
			s.RevenueByCategory[t.Category] = s.RevenueByCategory[t.Category].Add(t.Amount)
		case entity.TransactionTypeExpense:
			s.Expenses = s.Expenses.Add(t.Amount)
			s.ExpensesByCategory[t.Category] = s.ExpensesByCategory[t.Category].Add(t.Amount)
		}
	}

	for _, inv := range invoices {
		if invoicing.IsActive(inv.Status) {
			s.Outstanding = s.Outstanding.Add(inv.Balance())
		}
		if inv.Status != entity.InvoiceStatusPaid {
			continue
		}
		s.PaidInvoicesTotal = s.PaidInvoicesTotal.Add(inv.TotalAmount)
		s.PaidInvoicesCount++
		if booked[inv.ID] {
			continue
		}
		s.Revenue = s.Revenue.Add(inv.TotalAmount)
		s.RevenueByCategory[CategoryInvoices] = s.RevenueByCategory[CategoryInvoices].Add(inv.TotalAmount)
	}
	return s
}

// Growth (current - previous) / previous * 100; 0 cuando previous es 0.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}
