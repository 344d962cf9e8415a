package repository

import (
	"context"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// LedgerRepository puerto del libro mayor (tabla transactions).
type LedgerRepository interface {
	// GetByReference devuelve (nil, nil) si no existe.
	GetByReference(ctx context.Context, referenceID string) (*entity.Transaction, error)
	// Upsert crea o actualiza por reference_id. created indica si la fila es nueva.
	Upsert(ctx context.Context, t *entity.Transaction) (created bool, err error)
}
