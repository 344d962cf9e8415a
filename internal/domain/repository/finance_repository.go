package repository

import (
	"context"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// ReportFilter rango [From, To) y sucursal opcional.
type ReportFilter struct {
	From     time.Time
	To       time.Time
	BranchID string
}

// FinanceRepository lecturas para reportes financieros (solo lectura).
type FinanceRepository interface {
	// ListTransactions asientos con date dentro del rango.
	ListTransactions(ctx context.Context, filter ReportFilter) ([]*entity.Transaction, error)
	// ListInvoices facturas no DRAFT con issue_date dentro del rango.
	ListInvoices(ctx context.Context, filter ReportFilter) ([]*entity.Invoice, error)
}
