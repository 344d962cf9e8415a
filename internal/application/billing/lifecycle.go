package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/elhamd/elhamd-api/internal/application/fulfillment"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

// lifecycle comparte entre casos de uso la unidad de trabajo y el despacho de efectos
// de cumplimiento según la transición de estado.
type lifecycle struct {
	tx        BillingTxRunner
	engine    *fulfillment.Engine
	scheduler ReconcileScheduler
	strict    bool
	log       zerolog.Logger
}

// run en modo transaccional persist y effects comparten la transacción;
// en best_effort persist es atómico y effects corre después sobre el pool.
// Si effects falla en best_effort se encola la reconciliación del libro mayor.
func (l *lifecycle) run(ctx context.Context, invoiceID string, persist, effects func(repos repository.Set) error) error {
	if l.engine.Mode() == fulfillment.ModeTransactional {
		return l.tx.RunBilling(ctx, func(repos repository.Set) error {
			if err := persist(repos); err != nil {
				return err
			}
			return effects(repos)
		})
	}

	if err := l.tx.RunBilling(ctx, persist); err != nil {
		return err
	}
	if err := effects(l.tx.Repositories()); err != nil {
		if l.scheduler != nil {
			if serr := l.scheduler.ScheduleReconcile(ctx, invoiceID); serr != nil {
				l.log.Error().Err(serr).Str("invoice_id", invoiceID).Msg("no se pudo encolar la reconciliación")
			}
		}
		return fmt.Errorf("efectos de cumplimiento: %w", err)
	}
	return nil
}

func (l *lifecycle) links(items []*entity.InvoiceItem) invoicing.Links {
	return invoicing.ExtractLinks(items, invoicing.ExtractOptions{Strict: l.strict})
}

// onTransition aplica o libera efectos cuando la factura pasa de from a inv.Status.
//   - entrar (o moverse) a un estado activo aplica; descuenta stock solo si aún no se hizo.
//   - CANCELLED/REFUNDED liberan si hubo ajuste o si venía de un estado activo.
//   - REFUNDED además resincroniza el asiento del libro mayor.
func (l *lifecycle) onTransition(ctx context.Context, repos repository.Set, inv *entity.Invoice, from string) error {
	to := inv.Status
	switch {
	case invoicing.IsActive(to):
		if from == to {
			return nil
		}
		items, err := repos.Invoices.GetItems(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		links := l.links(items)
		refs, err := l.engine.LoadRefs(ctx, repos, links)
		if err != nil {
			return err
		}
		_, err = l.engine.Apply(ctx, repos, fulfillment.ApplyInput{
			Invoice:         inv,
			Links:           links,
			InventoryMap:    refs.Inventory,
			VehicleMap:      refs.Vehicles,
			Totals:          invoicing.TotalsOf(inv),
			AdjustInventory: !inv.InventoryAdjusted(),
		})
		return err

	case invoicing.IsReleasing(to):
		if inv.InventoryAdjusted() || invoicing.IsActive(from) {
			if err := l.release(ctx, repos, inv); err != nil {
				return err
			}
		}
		// un reembolso deja de ser venta: el asiento SALE-<id> sale de SALES
		if to == entity.InvoiceStatusRefunded {
			_, err := l.engine.Reconcile(ctx, repos, inv)
			return err
		}
	}
	return nil
}

// release revierte los efectos de las líneas actuales de la factura.
func (l *lifecycle) release(ctx context.Context, repos repository.Set, inv *entity.Invoice) error {
	items, err := repos.Invoices.GetItems(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("get items: %w", err)
	}
	links := l.links(items)
	refs, err := l.engine.LoadRefs(ctx, repos, links)
	if err != nil {
		return err
	}
	_, err = l.engine.Release(ctx, repos, fulfillment.ReleaseInput{
		Invoice:          inv,
		Links:            links,
		InventoryMap:     refs.Inventory,
		VehicleMap:       refs.Vehicles,
		RestoreInventory: inv.InventoryAdjusted(),
	})
	return err
}
