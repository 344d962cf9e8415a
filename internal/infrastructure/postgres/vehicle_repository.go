package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo catálogo de vehículos sobre PostgreSQL.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

// GetByIDs carga los vehículos indicados; con forUpdate bloquea las filas.
func (r *VehicleRepo) GetByIDs(ctx context.Context, ids []string, forUpdate bool) (map[string]*entity.Vehicle, error) {
	out := make(map[string]*entity.Vehicle, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT id, stock_number, make, model, year, price, status, branch_id, updated_at
		FROM vehicles WHERE id = ANY($1) ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get vehicles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v entity.Vehicle
		if err := rows.Scan(&v.ID, &v.StockNumber, &v.Make, &v.Model, &v.Year, &v.Price,
			&v.Status, &v.BranchID, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out[v.ID] = &v
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado del vehículo.
func (r *VehicleRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE vehicles SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update vehicle %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update vehicle %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
