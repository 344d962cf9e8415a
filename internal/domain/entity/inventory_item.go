package entity

import "time"

// Estados de stock de repuestos. Status es derivado de Quantity y MinStockLevel
// (ver inventory.DeriveStatus), salvo DISCONTINUED que es permanente.
const (
	InventoryStatusInStock      = "IN_STOCK"
	InventoryStatusLowStock     = "LOW_STOCK"
	InventoryStatusOutOfStock   = "OUT_OF_STOCK"
	InventoryStatusDiscontinued = "DISCONTINUED"
)

// InventoryItem repuesto o artículo con existencias.
type InventoryItem struct {
	ID            string
	Name          string
	PartNumber    string
	Quantity      int // >= 0
	MinStockLevel int
	Status        string
	BranchID      string
	UpdatedAt     time.Time
}
