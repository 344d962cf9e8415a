package invoicing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
)

func item(id string, qty string, md entity.Metadata) *entity.InvoiceItem {
	return &entity.InvoiceItem{ID: id, Quantity: decimal.RequireFromString(qty), Metadata: md}
}

func TestExtractLinks_ClasificaPorItemType(t *testing.T) {
	items := []*entity.InvoiceItem{
		item("a", "2", entity.Metadata{"itemType": "part", "inventoryItemId": "P1"}),
		item("b", "1", entity.Metadata{"itemType": "VEHICLE", "vehicleId": "V1"}),
		item("c", "1", entity.Metadata{"itemType": "service"}),
	}
	links := invoicing.ExtractLinks(items, invoicing.ExtractOptions{})

	require.Len(t, links.Items, 3)
	assert.Equal(t, invoicing.PartLink{Item: "a", InventoryItemID: "P1", Quantity: 2}, links.Items[0])
	assert.Equal(t, invoicing.VehicleLink{Item: "b", VehicleID: "V1"}, links.Items[1])
	assert.Equal(t, invoicing.ServiceLink{Item: "c"}, links.Items[2])
	assert.Equal(t, []string{"P1"}, links.InventoryIDs)
	assert.Equal(t, []string{"V1"}, links.VehicleIDs)
}

func TestExtractLinks_FallbackTypeYCategory(t *testing.T) {
	items := []*entity.InvoiceItem{
		item("a", "1", entity.Metadata{"type": "PART", "inventoryItemId": "P1"}),
		item("b", "1", entity.Metadata{"category": "vehicle", "vehicleId": "V9"}),
	}
	links := invoicing.ExtractLinks(items, invoicing.ExtractOptions{})
	assert.Equal(t, invoicing.ItemTypePart, links.Items[0].Type())
	assert.Equal(t, invoicing.ItemTypeVehicle, links.Items[1].Type())
}

func TestExtractLinks_ServicioConRepuestoSeReclasifica(t *testing.T) {
	items := []*entity.InvoiceItem{
		item("a", "3", entity.Metadata{"inventoryItemId": "P1"}),
		item("b", "1", entity.Metadata{"itemType": "SERVICE", "vehicleId": "V1"}),
	}
	links := invoicing.ExtractLinks(items, invoicing.ExtractOptions{})
	assert.Equal(t, invoicing.PartLink{Item: "a", InventoryItemID: "P1", Quantity: 3}, links.Items[0])
	assert.Equal(t, invoicing.VehicleLink{Item: "b", VehicleID: "V1"}, links.Items[1])
}

func TestExtractLinks_ModoEstrictoNoReclasifica(t *testing.T) {
	items := []*entity.InvoiceItem{
		item("a", "3", entity.Metadata{"itemType": "SERVICE", "inventoryItemId": "P1"}),
	}
	links := invoicing.ExtractLinks(items, invoicing.ExtractOptions{Strict: true})
	assert.Equal(t, invoicing.ServiceLink{Item: "a"}, links.Items[0])
	assert.Empty(t, links.InventoryIDs)
}

func TestExtractLinks_MetadataInvalidaDegradaAServicio(t *testing.T) {
	items := []*entity.InvoiceItem{
		item("a", "1", nil),
		item("b", "1", entity.Metadata{"itemType": 42, "inventoryItemId": 7}),
		item("c", "1", entity.Metadata{"itemType": "PART"}), // sin inventoryItemId
		item("d", "1", entity.Metadata{"itemType": "gadget"}),
	}
	links := invoicing.ExtractLinks(items, invoicing.ExtractOptions{})
	for _, l := range links.Items {
		assert.Equal(t, invoicing.ItemTypeService, l.Type(), l.ItemID())
	}
	assert.Empty(t, links.InventoryIDs)
	assert.Empty(t, links.VehicleIDs)
}

func TestExtractLinks_DeduplicaYRedondea(t *testing.T) {
	items := []*entity.InvoiceItem{
		item("a", "1.6", entity.Metadata{"itemType": "PART", "inventoryItemId": "P1"}),
		item("b", "2.4", entity.Metadata{"itemType": "PART", "inventoryItemId": "P1"}),
		item("c", "-3", entity.Metadata{"itemType": "PART", "inventoryItemId": "P2"}),
	}
	links := invoicing.ExtractLinks(items, invoicing.ExtractOptions{})
	assert.Equal(t, []string{"P1", "P2"}, links.InventoryIDs)

	parts := links.PartQuantities()
	require.Len(t, parts, 2)
	assert.Equal(t, 4, parts[0].Quantity) // 2 + 2
	assert.Equal(t, 0, parts[1].Quantity)
}
