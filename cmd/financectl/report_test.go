package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/application/dto"
)

func TestRenderOverview(t *testing.T) {
	ov := &dto.FinanceOverview{
		Period:                "month",
		From:                  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		To:                    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TotalRevenue:          decimal.NewFromInt(1450),
		TotalExpenses:         decimal.NewFromInt(300),
		NetProfit:             decimal.NewFromInt(1150),
		ProfitMargin:          decimal.RequireFromString("0.7931"),
		PaidInvoicesTotal:     decimal.NewFromInt(1250),
		PaidInvoicesCount:     2,
		OutstandingReceivable: decimal.NewFromInt(400),
		RevenueByCategory: map[string]decimal.Decimal{
			"SALES":    decimal.NewFromInt(200),
			"INVOICES": decimal.NewFromInt(1250),
		},
		Trend: dto.FinanceTrend{RevenueGrowth: decimal.NewFromInt(100)},
	}
	var buf bytes.Buffer
	require.NoError(t, renderOverview(&buf, ov))

	out := buf.String()
	assert.Contains(t, out, "1,450.00")
	assert.Contains(t, out, "79.31%")
	assert.Contains(t, out, "100.00%")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Ingresos / INVOICES")), bytes.Index(buf.Bytes(), []byte("Ingresos / SALES")))
}

func TestCommandsRegistrados(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["report"])
	assert.True(t, names["reconcile"])
	assert.True(t, names["sweep-overdue"])
}

func TestReconcile_RequiereID(t *testing.T) {
	rootCmd.SetArgs([]string{"reconcile"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
