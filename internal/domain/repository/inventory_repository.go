package repository

import (
	"context"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// InventoryRepository puerto del stock de repuestos.
type InventoryRepository interface {
	// GetByIDs devuelve los ítems encontrados indexados por id; los ids inexistentes no aparecen.
	// Con forUpdate las filas quedan bloqueadas hasta el fin de la transacción.
	GetByIDs(ctx context.Context, ids []string, forUpdate bool) (map[string]*entity.InventoryItem, error)
	// UpdateStock persiste cantidad y estado derivado juntos.
	UpdateStock(ctx context.Context, id string, quantity int, status string, updatedAt time.Time) error
}
