package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, invoice_number, status, currency, subtotal, tax_amount, total_amount, paid_amount,
	customer_id, branch_id, issue_date, due_date, paid_at, notes, metadata, created_by, created_at, updated_at`

const itemColumns = `id, invoice_id, description, quantity, unit_price, discount, total_price,
	tax_rate, tax_amount, metadata, position`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.Status, inv.Currency,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.PaidAmount,
		inv.CustomerID, inv.BranchID, inv.IssueDate, inv.DueDate, inv.PaidAt,
		inv.Notes, metadataOrEmpty(inv.Metadata), inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("insert invoice: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItems persiste las líneas.
func (r *InvoiceRepo) CreateItems(ctx context.Context, items []*entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query,
			it.ID, it.InvoiceID, it.Description, it.Quantity, it.UnitPrice, it.Discount,
			it.TotalPrice, it.TaxRate, it.TaxAmount, metadataOrEmpty(it.Metadata), it.Position,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// ReplaceItems borra las líneas de la factura e inserta las nuevas.
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.CreateItems(ctx, items)
}

// Update reescribe la cabecera. El CHECK paid_amount BETWEEN 0 AND total_amount
// se traduce a ErrConflict.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status       = $2,
		    currency     = $3,
		    subtotal     = $4,
		    tax_amount   = $5,
		    total_amount = $6,
		    paid_amount  = $7,
		    customer_id  = $8,
		    branch_id    = $9,
		    due_date     = $10,
		    paid_at      = $11,
		    notes        = $12,
		    metadata     = $13,
		    updated_at   = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.Status, inv.Currency, inv.Subtotal, inv.TaxAmount, inv.TotalAmount,
		inv.PaidAmount, inv.CustomerID, inv.BranchID, inv.DueDate, inv.PaidAt, inv.Notes,
		metadataOrEmpty(inv.Metadata), inv.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("update invoice: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateMetadata reemplaza solo la metadata.
func (r *InvoiceRepo) UpdateMetadata(ctx context.Context, id string, md entity.Metadata, updatedAt time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE invoices SET metadata = $2, updated_at = $3 WHERE id = $1`,
		id, metadataOrEmpty(md), updatedAt)
	if err != nil {
		return fmt.Errorf("update invoice metadata: %w", err)
	}
	return nil
}

// Delete elimina la cabecera; las líneas caen por ON DELETE CASCADE.
// payments.invoice_id es ON DELETE RESTRICT: con pagos devuelve ErrPaidInvoiceDelete.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %w", domain.ErrPaidInvoiceDelete, err)
		}
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene la factura; (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetItems líneas en orden de posición.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `SELECT ` + itemColumns + ` FROM invoice_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.Discount, &it.TotalPrice, &it.TaxRate, &it.TaxAmount, &it.Metadata, &it.Position); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List listado paginado con total de coincidencias.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	where := squirrel.And{}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"status": f.Status})
	}
	if f.CustomerID != "" {
		where = append(where, squirrel.Eq{"customer_id": f.CustomerID})
	}
	if f.BranchID != "" {
		where = append(where, squirrel.Eq{"branch_id": f.BranchID})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"issue_date": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.Lt{"issue_date": *f.To})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("invoices").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	q := psql.Select(invoiceColumns).From("invoices").Where(where).OrderBy("issue_date DESC", "id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var list []*entity.Invoice
	if err := pgxscan.Select(ctx, r.q, &list, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return list, total, nil
}

// ListOverdueCandidates facturas SENT/PARTIALLY_PAID con due_date anterior a now.
func (r *InvoiceRepo) ListOverdueCandidates(ctx context.Context, now time.Time, limit int) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status IN ($1, $2) AND due_date IS NOT NULL AND due_date < $3
		ORDER BY due_date
		LIMIT $4`
	var list []*entity.Invoice
	err := pgxscan.Select(ctx, r.q, &list, query,
		entity.InvoiceStatusSent, entity.InvoiceStatusPartiallyPaid, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue candidates: %w", err)
	}
	return list, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Status, &inv.Currency,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount,
		&inv.CustomerID, &inv.BranchID, &inv.IssueDate, &inv.DueDate, &inv.PaidAt,
		&inv.Notes, &inv.Metadata, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
