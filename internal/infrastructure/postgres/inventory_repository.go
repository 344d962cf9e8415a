package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo repuestos sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// GetByIDs carga los ítems indicados; los inexistentes no aparecen en el mapa.
// Con forUpdate bloquea las filas en orden de id (SELECT FOR UPDATE).
func (r *InventoryRepo) GetByIDs(ctx context.Context, ids []string, forUpdate bool) (map[string]*entity.InventoryItem, error) {
	out := make(map[string]*entity.InventoryItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT id, name, part_number, quantity, min_stock_level, status, branch_id, updated_at
		FROM inventory_items WHERE id = ANY($1) ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get inventory items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.PartNumber, &it.Quantity, &it.MinStockLevel,
			&it.Status, &it.BranchID, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out[it.ID] = &it
	}
	return out, rows.Err()
}

// UpdateStock fija cantidad y estado derivado. El CHECK quantity >= 0 se traduce a ErrConflict.
func (r *InventoryRepo) UpdateStock(ctx context.Context, id string, quantity int, status string, updatedAt time.Time) error {
	query := `UPDATE inventory_items SET quantity = $2, status = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, quantity, status, updatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("update stock %s: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("update stock %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
