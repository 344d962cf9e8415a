package repository

import (
	"context"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// VehicleRepository puerto de vehículos.
type VehicleRepository interface {
	GetByIDs(ctx context.Context, ids []string, forUpdate bool) (map[string]*entity.Vehicle, error)
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
}
