// Package inventory contiene las reglas puras de existencias de repuestos.
package inventory

import "github.com/elhamd/elhamd-api/internal/domain/entity"

// DeriveStatus recalcula el estado de stock a partir de la cantidad.
//
//	DISCONTINUED se conserva siempre;
//	quantity == 0            → OUT_OF_STOCK
//	quantity <= minStockLevel → LOW_STOCK (límite inclusivo)
//	resto                    → IN_STOCK
func DeriveStatus(current string, quantity, minStockLevel int) string {
	switch {
	case current == entity.InventoryStatusDiscontinued:
		return entity.InventoryStatusDiscontinued
	case quantity <= 0:
		return entity.InventoryStatusOutOfStock
	case quantity <= minStockLevel:
		return entity.InventoryStatusLowStock
	default:
		return entity.InventoryStatusInStock
	}
}

// Deduct resta n unidades sin bajar de cero.
func Deduct(quantity, n int) int {
	if n <= 0 {
		return quantity
	}
	if quantity-n < 0 {
		return 0
	}
	return quantity - n
}

// Restore suma n unidades (n negativo se ignora).
func Restore(quantity, n int) int {
	if n <= 0 {
		return quantity
	}
	return quantity + n
}
