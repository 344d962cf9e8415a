package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const transactionColumns = `id, reference_id, type, category, amount, currency, description, date,
	payment_method, customer_id, COALESCE(invoice_id, '') AS invoice_id, branch_id, metadata, created_at, updated_at`

// LedgerRepo libro mayor (tabla transactions, reference_id único).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// GetByReference asiento por referencia; (nil, nil) si no existe.
func (r *LedgerRepo) GetByReference(ctx context.Context, ref string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference_id = $1`
	var t entity.Transaction
	err := r.q.QueryRow(ctx, query, ref).Scan(
		&t.ID, &t.ReferenceID, &t.Type, &t.Category, &t.Amount, &t.Currency, &t.Description, &t.Date,
		&t.PaymentMethod, &t.CustomerID, &t.InvoiceID, &t.BranchID, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction %s: %w", ref, err)
	}
	return &t, nil
}

// Upsert inserta o actualiza por reference_id. created indica si la fila es nueva
// (xmax = 0 solo en filas recién insertadas).
func (r *LedgerRepo) Upsert(ctx context.Context, t *entity.Transaction) (bool, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (id, reference_id, type, category, amount, currency, description, date,
		                          payment_method, customer_id, invoice_id, branch_id, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (reference_id) DO UPDATE
		SET type           = EXCLUDED.type,
		    category       = EXCLUDED.category,
		    amount         = EXCLUDED.amount,
		    currency       = EXCLUDED.currency,
		    description    = EXCLUDED.description,
		    date           = EXCLUDED.date,
		    payment_method = EXCLUDED.payment_method,
		    customer_id    = EXCLUDED.customer_id,
		    invoice_id     = EXCLUDED.invoice_id,
		    branch_id      = EXCLUDED.branch_id,
		    metadata       = EXCLUDED.metadata,
		    updated_at     = now()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`
	var created bool
	err := r.q.QueryRow(ctx, query,
		t.ID, t.ReferenceID, t.Type, t.Category, t.Amount, t.Currency, t.Description, t.Date,
		t.PaymentMethod, t.CustomerID, nullIfEmpty(t.InvoiceID), t.BranchID, metadataOrEmpty(t.Metadata),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert transaction %s: %w", t.ReferenceID, err)
	}
	return created, nil
}
