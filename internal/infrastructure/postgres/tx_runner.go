package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elhamd/elhamd-api/internal/application/billing"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción, ejecuta fn con los repos de facturación atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(repos repository.Set) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newSet(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories repos sobre el pool, sin transacción.
func (r *TxRunner) Repositories() repository.Set {
	return newSet(r.pool)
}

func newSet(q Querier) repository.Set {
	return repository.Set{
		Invoices:  NewInvoiceRepository(q),
		Inventory: NewInventoryRepository(q),
		Vehicles:  NewVehicleRepository(q),
		Ledger:    NewLedgerRepository(q),
		Payments:  NewPaymentRepository(q),
	}
}
