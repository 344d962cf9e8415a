// Package finance agrega el libro mayor y las facturas para el tablero financiero.
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/elhamd/elhamd-api/internal/application/dto"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

// OverviewUseCase reportes de solo lectura sobre FinanceRepository.
type OverviewUseCase struct {
	repo repository.FinanceRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewOverviewUseCase construye el caso de uso.
func NewOverviewUseCase(repo repository.FinanceRepository, log zerolog.Logger) *OverviewUseCase {
	return &OverviewUseCase{repo: repo, log: log, now: time.Now}
}

type periodData struct {
	txs      []*entity.Transaction
	invoices []*entity.Invoice
}

// GetOverview resumen del periodo con crecimiento frente al periodo anterior.
//
// Cuatro lecturas en paralelo: asientos y facturas del periodo actual y del anterior.
func (uc *OverviewUseCase) GetOverview(ctx context.Context, q dto.OverviewQuery) (*dto.FinanceOverview, error) {
	cur, err := ResolveWindow(uc.now(), q.Period, q.From, q.To)
	if err != nil {
		return nil, err
	}
	prev := cur.Previous()

	var current, previous periodData
	g, gctx := errgroup.WithContext(ctx)
	uc.load(gctx, g, cur, q.BranchID, &current)
	uc.load(gctx, g, prev, q.BranchID, &previous)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("finance overview: %w", err)
	}

	sum := Summarize(current.txs, current.invoices)
	before := Summarize(previous.txs, previous.invoices)

	out := &dto.FinanceOverview{
		Period:                cur.Period,
		From:                  cur.From,
		To:                    cur.To,
		TotalRevenue:          sum.Revenue.Round(2),
		TotalExpenses:         sum.Expenses.Round(2),
		NetProfit:             sum.NetProfit().Round(2),
		ProfitMargin:          sum.ProfitMargin(),
		PaidInvoicesTotal:     sum.PaidInvoicesTotal.Round(2),
		PaidInvoicesCount:     sum.PaidInvoicesCount,
		PipelineValue:         sum.Pipeline.Round(2),
		OutstandingReceivable: sum.Outstanding.Round(2),
		RevenueByCategory:     sum.RevenueByCategory,
		ExpensesByCategory:    sum.ExpensesByCategory,
		Trend: dto.FinanceTrend{
			RevenueGrowth:  Growth(sum.Revenue, before.Revenue),
			ExpensesGrowth: Growth(sum.Expenses, before.Expenses),
			ProfitGrowth:   Growth(sum.NetProfit(), before.NetProfit()),
		},
	}
	uc.log.Debug().
		Str("period", cur.Period).
		Time("from", cur.From).
		Time("to", cur.To).
		Str("branch_id", q.BranchID).
		Int("transactions", len(current.txs)).
		Int("invoices", len(current.invoices)).
		Msg("resumen financiero")
	return out, nil
}

// GetMonthlyTrend serie mensual (mes en curso incluido) de ingresos, gastos y utilidad.
func (uc *OverviewUseCase) GetMonthlyTrend(ctx context.Context, q dto.TrendQuery) ([]dto.MonthlyPoint, error) {
	months := q.Months
	if months <= 0 {
		months = defaultTrendMonths
	}
	if months > maxTrendMonths {
		months = maxTrendMonths
	}
	end := monthStart(uc.now()).AddDate(0, 1, 0)
	start := end.AddDate(0, -months, 0)

	var data periodData
	g, gctx := errgroup.WithContext(ctx)
	uc.load(gctx, g, Window{From: start, To: end}, q.BranchID, &data)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("finance trend: %w", err)
	}

	txsByMonth := map[string][]*entity.Transaction{}
	for _, t := range data.txs {
		key := t.Date.UTC().Format("2006-01")
		txsByMonth[key] = append(txsByMonth[key], t)
	}
	invByMonth := map[string][]*entity.Invoice{}
	for _, inv := range data.invoices {
		key := inv.IssueDate.UTC().Format("2006-01")
		invByMonth[key] = append(invByMonth[key], inv)
	}

	out := make([]dto.MonthlyPoint, 0, months)
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		s := Summarize(txsByMonth[key], invByMonth[key])
		out = append(out, dto.MonthlyPoint{
			Month:    key,
			Revenue:  s.Revenue.Round(2),
			Expenses: s.Expenses.Round(2),
			Profit:   s.NetProfit().Round(2),
		})
	}
	return out, nil
}

// load agrega al grupo las lecturas de asientos y facturas de la ventana.
func (uc *OverviewUseCase) load(ctx context.Context, g *errgroup.Group, w Window, branchID string, dst *periodData) {
	filter := repository.ReportFilter{From: w.From, To: w.To, BranchID: branchID}
	g.Go(func() error {
		txs, err := uc.repo.ListTransactions(ctx, filter)
		if err != nil {
			return fmt.Errorf("transacciones: %w", err)
		}
		dst.txs = txs
		return nil
	})
	g.Go(func() error {
		invoices, err := uc.repo.ListInvoices(ctx, filter)
		if err != nil {
			return fmt.Errorf("facturas: %w", err)
		}
		dst.invoices = invoices
		return nil
	})
}
