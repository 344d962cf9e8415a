package fulfillment

import (
	"context"
	"fmt"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

// Refs entidades referenciadas por una o más facturas.
type Refs struct {
	Inventory map[string]*entity.InventoryItem
	Vehicles  map[string]*entity.Vehicle
}

// Missing devuelve las referencias de links que no están en r.
func (r Refs) Missing(links invoicing.Links) []string {
	var out []string
	for _, id := range links.InventoryIDs {
		if _, ok := r.Inventory[id]; !ok {
			out = append(out, "inventory:"+id)
		}
	}
	for _, id := range links.VehicleIDs {
		if _, ok := r.Vehicles[id]; !ok {
			out = append(out, "vehicle:"+id)
		}
	}
	return out
}

// LoadRefs carga en un único mapa las entidades de todos los links dados.
// En modo transaccional las filas se bloquean (FOR UPDATE).
func (e *Engine) LoadRefs(ctx context.Context, repos repository.Set, links ...invoicing.Links) (Refs, error) {
	var invIDs, vehIDs []string
	seen := make(map[string]struct{})
	for _, l := range links {
		for _, id := range l.InventoryIDs {
			if _, ok := seen["i"+id]; !ok {
				seen["i"+id] = struct{}{}
				invIDs = append(invIDs, id)
			}
		}
		for _, id := range l.VehicleIDs {
			if _, ok := seen["v"+id]; !ok {
				seen["v"+id] = struct{}{}
				vehIDs = append(vehIDs, id)
			}
		}
	}

	forUpdate := e.mode == ModeTransactional
	refs := Refs{
		Inventory: map[string]*entity.InventoryItem{},
		Vehicles:  map[string]*entity.Vehicle{},
	}
	if len(invIDs) > 0 {
		m, err := repos.Inventory.GetByIDs(ctx, invIDs, forUpdate)
		if err != nil {
			return refs, fmt.Errorf("load inventory refs: %w", err)
		}
		refs.Inventory = m
	}
	if len(vehIDs) > 0 {
		m, err := repos.Vehicles.GetByIDs(ctx, vehIDs, forUpdate)
		if err != nil {
			return refs, fmt.Errorf("load vehicle refs: %w", err)
		}
		refs.Vehicles = m
	}
	return refs, nil
}
