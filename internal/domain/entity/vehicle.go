package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del vehículo en el catálogo.
const (
	VehicleStatusAvailable   = "AVAILABLE"
	VehicleStatusReserved    = "RESERVED"
	VehicleStatusSold        = "SOLD"
	VehicleStatusMaintenance = "MAINTENANCE"
)

// Vehicle vehículo del inventario de la concesionaria.
type Vehicle struct {
	ID          string
	StockNumber string
	Make        string
	Model       string
	Year        int
	Price       decimal.Decimal
	Status      string
	BranchID    string
	UpdatedAt   time.Time
}
