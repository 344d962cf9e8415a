package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

var _ repository.FinanceRepository = (*FinanceRepo)(nil)

// FinanceRepo lecturas de reportes (solo lectura, sobre el pool).
type FinanceRepo struct {
	q Querier
}

// NewFinanceRepository construye el adaptador.
func NewFinanceRepository(q Querier) *FinanceRepo {
	return &FinanceRepo{q: q}
}

// ListTransactions asientos con date en [From, To).
func (r *FinanceRepo) ListTransactions(ctx context.Context, f repository.ReportFilter) ([]*entity.Transaction, error) {
	q := psql.Select(transactionColumns).
		From("transactions").
		Where(squirrel.GtOrEq{"date": f.From}).
		Where(squirrel.Lt{"date": f.To}).
		OrderBy("date")
	if f.BranchID != "" {
		q = q.Where(squirrel.Eq{"branch_id": f.BranchID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build transactions query: %w", err)
	}
	var list []*entity.Transaction
	if err := pgxscan.Select(ctx, r.q, &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

// ListInvoices facturas no DRAFT con issue_date en [From, To).
func (r *FinanceRepo) ListInvoices(ctx context.Context, f repository.ReportFilter) ([]*entity.Invoice, error) {
	q := psql.Select(invoiceColumns).
		From("invoices").
		Where(squirrel.NotEq{"status": entity.InvoiceStatusDraft}).
		Where(squirrel.GtOrEq{"issue_date": f.From}).
		Where(squirrel.Lt{"issue_date": f.To}).
		OrderBy("issue_date")
	if f.BranchID != "" {
		q = q.Where(squirrel.Eq{"branch_id": f.BranchID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoices query: %w", err)
	}
	var list []*entity.Invoice
	if err := pgxscan.Select(ctx, r.q, &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return list, nil
}
