package repository

// Set agrupa los repositorios que participan en una misma unidad de trabajo
// (pool o transacción, según quién lo construya).
type Set struct {
	Invoices  InvoiceRepository
	Inventory InventoryRepository
	Vehicles  VehicleRepository
	Ledger    LedgerRepository
	Payments  PaymentRepository
}
