// Package invoicing agrupa las reglas puras de facturación: clasificación de
// líneas (servicio, repuesto, vehículo), cálculo de totales y transiciones de estado.
package invoicing

import (
	"strings"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// ItemType tipo de línea de factura.
type ItemType string

const (
	ItemTypeService ItemType = "SERVICE"
	ItemTypePart    ItemType = "PART"
	ItemTypeVehicle ItemType = "VEHICLE"
)

// Claves de metadata leídas por el extractor.
const (
	metaItemType        = "itemType"
	metaType            = "type"
	metaCategory        = "category"
	metaInventoryItemID = "inventoryItemId"
	metaVehicleID       = "vehicleId"
)

// ItemLink resultado de clasificar una línea. Es un tipo suma cerrado:
// ServiceLink, PartLink o VehicleLink.
type ItemLink interface {
	ItemID() string
	Type() ItemType
	isItemLink()
}

// ServiceLink línea sin efecto sobre stock ni vehículos.
type ServiceLink struct {
	Item string
}

// PartLink línea enlazada a un repuesto; Quantity ya está redondeada y es >= 0.
type PartLink struct {
	Item            string
	InventoryItemID string
	Quantity        int
}

// VehicleLink línea enlazada a un vehículo.
type VehicleLink struct {
	Item      string
	VehicleID string
}

func (l ServiceLink) ItemID() string { return l.Item }
func (l ServiceLink) Type() ItemType { return ItemTypeService }
func (ServiceLink) isItemLink()      {}

func (l PartLink) ItemID() string { return l.Item }
func (l PartLink) Type() ItemType { return ItemTypePart }
func (PartLink) isItemLink()      {}

func (l VehicleLink) ItemID() string { return l.Item }
func (l VehicleLink) Type() ItemType { return ItemTypeVehicle }
func (VehicleLink) isItemLink()      {}

// Links resultado de ExtractLinks. InventoryIDs y VehicleIDs sin duplicados,
// en orden de primera aparición.
type Links struct {
	Items        []ItemLink
	InventoryIDs []string
	VehicleIDs   []string
}

// ExtractOptions ajusta la clasificación.
// Strict desactiva la reclasificación SERVICE→PART/VEHICLE por presencia de ids.
type ExtractOptions struct {
	Strict bool
}

// ExtractLinks clasifica cada línea y resuelve la entidad enlazada.
// Nunca falla: metadata mal formada degrada a SERVICE sin enlaces.
func ExtractLinks(items []*entity.InvoiceItem, opts ExtractOptions) Links {
	var out Links
	seenInv := make(map[string]struct{})
	seenVeh := make(map[string]struct{})

	for _, item := range items {
		if item == nil {
			continue
		}
		md := item.Metadata
		itemType := resolveType(md)
		inventoryID := strings.TrimSpace(md.String(metaInventoryItemID))
		vehicleID := strings.TrimSpace(md.String(metaVehicleID))

		if itemType == ItemTypeService && !opts.Strict {
			switch {
			case inventoryID != "":
				itemType = ItemTypePart
			case vehicleID != "":
				itemType = ItemTypeVehicle
			}
		}

		switch {
		case itemType == ItemTypePart && inventoryID != "":
			out.Items = append(out.Items, PartLink{
				Item:            item.ID,
				InventoryItemID: inventoryID,
				Quantity:        roundQuantity(item),
			})
			if _, ok := seenInv[inventoryID]; !ok {
				seenInv[inventoryID] = struct{}{}
				out.InventoryIDs = append(out.InventoryIDs, inventoryID)
			}
		case itemType == ItemTypeVehicle && vehicleID != "":
			out.Items = append(out.Items, VehicleLink{Item: item.ID, VehicleID: vehicleID})
			if _, ok := seenVeh[vehicleID]; !ok {
				seenVeh[vehicleID] = struct{}{}
				out.VehicleIDs = append(out.VehicleIDs, vehicleID)
			}
		default:
			out.Items = append(out.Items, ServiceLink{Item: item.ID})
		}
	}
	return out
}

// PartQuantities suma las cantidades por repuesto, en el orden de InventoryIDs.
// Dos líneas del mismo repuesto producen una sola escritura.
func (l Links) PartQuantities() []PartLink {
	totals := make(map[string]int, len(l.InventoryIDs))
	for _, link := range l.Items {
		if p, ok := link.(PartLink); ok {
			totals[p.InventoryItemID] += p.Quantity
		}
	}
	out := make([]PartLink, 0, len(l.InventoryIDs))
	for _, id := range l.InventoryIDs {
		out = append(out, PartLink{InventoryItemID: id, Quantity: totals[id]})
	}
	return out
}

// HasVehicle indica si el vehículo está enlazado en alguna línea.
func (l Links) HasVehicle(vehicleID string) bool {
	for _, id := range l.VehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

func resolveType(md entity.Metadata) ItemType {
	for _, key := range []string{metaItemType, metaType, metaCategory} {
		raw := strings.ToUpper(strings.TrimSpace(md.String(key)))
		if raw == "" {
			continue
		}
		switch ItemType(raw) {
		case ItemTypeService, ItemTypePart, ItemTypeVehicle:
			return ItemType(raw)
		}
		// valor no reconocido: SERVICE por defecto
		return ItemTypeService
	}
	return ItemTypeService
}

func roundQuantity(item *entity.InvoiceItem) int {
	n := int(item.Quantity.Round(0).IntPart())
	if n < 0 {
		return 0
	}
	return n
}
