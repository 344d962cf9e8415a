package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverviewQuery query de GET /api/finance/overview.
type OverviewQuery struct {
	Period   string `query:"period" validate:"omitempty,oneof=day week month quarter year"`
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	BranchID string `query:"branch_id"`
}

// TrendQuery query de GET /api/finance/trend.
type TrendQuery struct {
	Months   int    `query:"months" validate:"omitempty,min=1,max=24"`
	BranchID string `query:"branch_id"`
}

// FinanceOverview resumen financiero del periodo.
type FinanceOverview struct {
	Period                string                     `json:"period"`
	From                  time.Time                  `json:"from"`
	To                    time.Time                  `json:"to"`
	TotalRevenue          decimal.Decimal            `json:"total_revenue"`
	TotalExpenses         decimal.Decimal            `json:"total_expenses"`
	NetProfit             decimal.Decimal            `json:"net_profit"`
	ProfitMargin          decimal.Decimal            `json:"profit_margin"`
	PaidInvoicesTotal     decimal.Decimal            `json:"paid_invoices_total"`
	PaidInvoicesCount     int                        `json:"paid_invoices_count"`
	PipelineValue         decimal.Decimal            `json:"pipeline_value"`
	OutstandingReceivable decimal.Decimal            `json:"outstanding_receivables"`
	RevenueByCategory     map[string]decimal.Decimal `json:"revenue_by_category"`
	ExpensesByCategory    map[string]decimal.Decimal `json:"expenses_by_category"`
	Trend                 FinanceTrend               `json:"trend"`
}

// FinanceTrend crecimiento porcentual frente al periodo anterior.
type FinanceTrend struct {
	RevenueGrowth  decimal.Decimal `json:"revenue_growth"`
	ExpensesGrowth decimal.Decimal `json:"expenses_growth"`
	ProfitGrowth   decimal.Decimal `json:"profit_growth"`
}

// MonthlyPoint un mes de la serie de tendencia.
type MonthlyPoint struct {
	Month    string          `json:"month"` // 2006-01
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}
