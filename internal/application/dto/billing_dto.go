package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// Status solo admite DRAFT (por defecto) o SENT.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number,omitempty" validate:"omitempty,max=64"`
	CustomerID    string               `json:"customer_id" validate:"required"`
	BranchID      string               `json:"branch_id,omitempty"`
	Status        string               `json:"status,omitempty" validate:"omitempty,oneof=DRAFT SENT"`
	Currency      string               `json:"currency,omitempty" validate:"omitempty,len=3"`
	IssueDate     *time.Time           `json:"issue_date,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	Notes         string               `json:"notes,omitempty" validate:"max=2000"`
	Metadata      map[string]any       `json:"metadata,omitempty"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id. Las líneas se reemplazan completas.
type UpdateInvoiceRequest struct {
	CustomerID *string              `json:"customer_id,omitempty" validate:"omitempty,min=1"`
	BranchID   *string              `json:"branch_id,omitempty"`
	Currency   *string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	DueDate    *time.Time           `json:"due_date,omitempty"`
	Notes      *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items      []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemRequest línea de factura. ItemType, InventoryItemID y VehicleID se copian
// a la metadata de la línea (itemType, inventoryItemId, vehicleId).
type InvoiceItemRequest struct {
	Description     string          `json:"description" validate:"required,max=500"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	TaxRate         decimal.Decimal `json:"tax_rate"` // 14 o 0.14
	ItemType        string          `json:"item_type,omitempty" validate:"omitempty,oneof=SERVICE PART VEHICLE service part vehicle"`
	InventoryItemID string          `json:"inventory_item_id,omitempty"`
	VehicleID       string          `json:"vehicle_id,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

// ChangeStatusRequest body para PATCH /api/invoices/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT SENT PAID PARTIALLY_PAID OVERDUE CANCELLED REFUNDED"`
}

// ListInvoicesQuery filtros de GET /api/invoices.
type ListInvoicesQuery struct {
	PageRequest
	Status     string `query:"status" validate:"omitempty,oneof=DRAFT SENT PAID PARTIALLY_PAID OVERDUE CANCELLED REFUNDED"`
	CustomerID string `query:"customer_id"`
	BranchID   string `query:"branch_id"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// InvoiceResponse factura con líneas.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	Status        string                `json:"status"`
	Currency      string                `json:"currency"`
	CustomerID    string                `json:"customer_id"`
	BranchID      string                `json:"branch_id,omitempty"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Balance       decimal.Decimal       `json:"balance"`
	Notes         string                `json:"notes,omitempty"`
	Metadata      map[string]any        `json:"metadata,omitempty"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	ItemType    string          `json:"item_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
