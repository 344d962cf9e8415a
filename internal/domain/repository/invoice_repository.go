package repository

import (
	"context"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas.
type InvoiceFilter struct {
	Status     string
	CustomerID string
	BranchID   string
	From       *time.Time // issue_date >= From
	To         *time.Time // issue_date < To
	Limit      int
	Offset     int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// GetByID y GetForUpdate devuelven (nil, nil) si la factura no existe.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItems(ctx context.Context, items []*entity.InvoiceItem) error
	// ReplaceItems borra las líneas actuales e inserta las nuevas.
	ReplaceItems(ctx context.Context, invoiceID string, items []*entity.InvoiceItem) error
	// Update persiste la cabecera completa (estado, totales, pagos, metadata).
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdateMetadata reemplaza solo la metadata de auditoría.
	UpdateMetadata(ctx context.Context, id string, metadata entity.Metadata, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, int, error)
	// ListOverdueCandidates facturas SENT/PARTIALLY_PAID con due_date anterior a now.
	ListOverdueCandidates(ctx context.Context, now time.Time, limit int) ([]*entity.Invoice, error)
}
