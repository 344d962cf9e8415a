// Package fulfillment sincroniza stock, vehículos y libro mayor con el estado
// y las líneas actuales de una factura, y deja la traza de auditoría en su metadata.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/inventory"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

// Mode consistencia de las escrituras del motor.
type Mode string

const (
	// ModeTransactional todas las escrituras corren en la transacción del caller
	// y las filas referenciadas se leen con FOR UPDATE.
	ModeTransactional Mode = "transactional"
	// ModeBestEffort escrituras concurrentes sobre el pool; un fallo no revierte las demás.
	ModeBestEffort Mode = "best_effort"
)

// Operaciones y resultados reportados al Recorder.
const (
	OpApply     = "apply"
	OpRelease   = "release"
	OpReconcile = "reconcile"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder recibe una observación por llamada al motor (métricas).
type Recorder interface {
	ObserveFulfillment(op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFulfillment(string, string) {}

// Options configuración del Engine.
type Options struct {
	Mode        Mode
	Parallelism int // solo best_effort
	Logger      zerolog.Logger
	Recorder    Recorder
	Now         func() time.Time
}

// Engine motor de cumplimiento. Es stateless: todo el estado vive en los repositorios.
type Engine struct {
	mode        Mode
	parallelism int
	log         zerolog.Logger
	rec         Recorder
	now         func() time.Time
}

// NewEngine construye el motor con valores por defecto razonables.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		mode:        opts.Mode,
		parallelism: opts.Parallelism,
		log:         opts.Logger,
		rec:         opts.Recorder,
		now:         opts.Now,
	}
	if e.mode != ModeBestEffort {
		e.mode = ModeTransactional
	}
	if e.parallelism < 1 {
		e.parallelism = 1
	}
	if e.rec == nil {
		e.rec = nopRecorder{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Mode devuelve el modo de consistencia configurado.
func (e *Engine) Mode() Mode { return e.mode }

// ApplyInput entrada de Apply. Los mapas deben contener las entidades referenciadas
// por Links; las que falten se omiten.
type ApplyInput struct {
	Invoice         *entity.Invoice
	Links           invoicing.Links
	InventoryMap    map[string]*entity.InventoryItem
	VehicleMap      map[string]*entity.Vehicle
	Totals          invoicing.Totals
	AdjustInventory bool
}

// ReleaseInput entrada de Release.
type ReleaseInput struct {
	Invoice          *entity.Invoice
	Links            invoicing.Links
	InventoryMap     map[string]*entity.InventoryItem
	VehicleMap       map[string]*entity.Vehicle
	RestoreInventory bool
}

// Result resumen de una llamada al motor.
type Result struct {
	PartsUpdated    int
	VehiclesUpdated int
	Skipped         []string // referencias colgantes omitidas
	LedgerCreated   bool
}

// write escritura pendiente sobre inventario o vehículos.
type write struct {
	ref string
	fn  func(ctx context.Context) error
}

// Apply aplica los efectos de la factura: descuenta stock (si AdjustInventory),
// reserva o vende vehículos, hace upsert del asiento SALE-<id> y estampa la metadata.
// Los mapas se actualizan en memoria con los valores persistidos.
func (e *Engine) Apply(ctx context.Context, repos repository.Set, in ApplyInput) (*Result, error) {
	if in.Invoice == nil {
		return nil, fmt.Errorf("fulfillment apply: factura nil")
	}
	inv := in.Invoice
	now := e.now()
	res := &Result{}
	var writes []write

	if in.AdjustInventory {
		for _, part := range in.Links.PartQuantities() {
			item, ok := in.InventoryMap[part.InventoryItemID]
			if !ok || item == nil {
				res.Skipped = append(res.Skipped, "inventory:"+part.InventoryItemID)
				continue
			}
			if part.Quantity == 0 {
				continue
			}
			qty := inventory.Deduct(item.Quantity, part.Quantity)
			status := inventory.DeriveStatus(item.Status, qty, item.MinStockLevel)
			item.Quantity, item.Status, item.UpdatedAt = qty, status, now
			id := item.ID
			writes = append(writes, write{ref: "inventory:" + id, fn: func(ctx context.Context) error {
				return repos.Inventory.UpdateStock(ctx, id, qty, status, now)
			}})
			res.PartsUpdated++
		}
	}

	target := entity.VehicleStatusReserved
	if inv.Status == entity.InvoiceStatusPaid {
		target = entity.VehicleStatusSold
	}
	for _, vehicleID := range in.Links.VehicleIDs {
		v, ok := in.VehicleMap[vehicleID]
		if !ok || v == nil {
			res.Skipped = append(res.Skipped, "vehicle:"+vehicleID)
			continue
		}
		// un vehículo vendido nunca vuelve a reservado
		if v.Status == target || v.Status == entity.VehicleStatusSold {
			continue
		}
		v.Status, v.UpdatedAt = target, now
		id, status := v.ID, target
		writes = append(writes, write{ref: "vehicle:" + id, fn: func(ctx context.Context) error {
			return repos.Vehicles.UpdateStatus(ctx, id, status, now)
		}})
		res.VehiclesUpdated++
	}

	if err := e.runWrites(ctx, inv.ID, writes); err != nil {
		e.observe(OpApply, err)
		return res, err
	}

	created, err := e.UpsertLedger(ctx, repos.Ledger, inv, in.Totals)
	if err != nil {
		e.observe(OpApply, err)
		return res, err
	}
	res.LedgerCreated = created

	patch := entity.Metadata{
		entity.MetaSaleStatus:          inv.Status,
		entity.MetaSaleStatusUpdatedAt: entity.Timestamp(now),
	}
	if in.AdjustInventory {
		patch[entity.MetaInventoryAdjusted] = true
		patch[entity.MetaInventoryAdjustedAt] = entity.Timestamp(now)
		patch[entity.MetaInventoryRestored] = false
		patch[entity.MetaInventoryRestoredAt] = nil
	}
	if err := e.stamp(ctx, repos, inv, patch, now); err != nil {
		e.observe(OpApply, err)
		return res, err
	}

	e.logSkipped(inv.ID, res.Skipped)
	e.log.Info().
		Str("invoice_id", inv.ID).
		Str("status", inv.Status).
		Bool("adjust_inventory", in.AdjustInventory).
		Int("parts", res.PartsUpdated).
		Int("vehicles", res.VehiclesUpdated).
		Bool("ledger_created", created).
		Msg("cumplimiento aplicado")
	e.observe(OpApply, nil)
	return res, nil
}

// Release revierte los efectos: restaura stock (si RestoreInventory) y libera los
// vehículos que no estén vendidos. Siempre deja inventoryAdjusted=false e
// inventoryRestored=true en la metadata. El asiento del libro mayor se conserva.
func (e *Engine) Release(ctx context.Context, repos repository.Set, in ReleaseInput) (*Result, error) {
	if in.Invoice == nil {
		return nil, fmt.Errorf("fulfillment release: factura nil")
	}
	inv := in.Invoice
	now := e.now()
	res := &Result{}
	var writes []write

	if in.RestoreInventory {
		for _, part := range in.Links.PartQuantities() {
			item, ok := in.InventoryMap[part.InventoryItemID]
			if !ok || item == nil {
				res.Skipped = append(res.Skipped, "inventory:"+part.InventoryItemID)
				continue
			}
			if part.Quantity == 0 {
				continue
			}
			qty := inventory.Restore(item.Quantity, part.Quantity)
			status := inventory.DeriveStatus(item.Status, qty, item.MinStockLevel)
			item.Quantity, item.Status, item.UpdatedAt = qty, status, now
			id := item.ID
			writes = append(writes, write{ref: "inventory:" + id, fn: func(ctx context.Context) error {
				return repos.Inventory.UpdateStock(ctx, id, qty, status, now)
			}})
			res.PartsUpdated++
		}
	}

	for _, vehicleID := range in.Links.VehicleIDs {
		v, ok := in.VehicleMap[vehicleID]
		if !ok || v == nil {
			res.Skipped = append(res.Skipped, "vehicle:"+vehicleID)
			continue
		}
		if v.Status == entity.VehicleStatusSold || v.Status == entity.VehicleStatusAvailable {
			continue
		}
		v.Status, v.UpdatedAt = entity.VehicleStatusAvailable, now
		id := v.ID
		writes = append(writes, write{ref: "vehicle:" + id, fn: func(ctx context.Context) error {
			return repos.Vehicles.UpdateStatus(ctx, id, entity.VehicleStatusAvailable, now)
		}})
		res.VehiclesUpdated++
	}

	if err := e.runWrites(ctx, inv.ID, writes); err != nil {
		e.observe(OpRelease, err)
		return res, err
	}

	patch := entity.Metadata{
		entity.MetaSaleStatus:          inv.Status,
		entity.MetaSaleStatusUpdatedAt: entity.Timestamp(now),
		entity.MetaInventoryAdjusted:   false,
		entity.MetaInventoryRestored:   true,
		entity.MetaInventoryRestoredAt: entity.Timestamp(now),
	}
	if err := e.stamp(ctx, repos, inv, patch, now); err != nil {
		e.observe(OpRelease, err)
		return res, err
	}

	e.logSkipped(inv.ID, res.Skipped)
	e.log.Info().
		Str("invoice_id", inv.ID).
		Str("status", inv.Status).
		Bool("restore_inventory", in.RestoreInventory).
		Int("parts", res.PartsUpdated).
		Int("vehicles", res.VehiclesUpdated).
		Msg("cumplimiento liberado")
	e.observe(OpRelease, nil)
	return res, nil
}

// Reconcile re-ejecuta solo el upsert del libro mayor y el sello saleStatus; no toca stock.
func (e *Engine) Reconcile(ctx context.Context, repos repository.Set, inv *entity.Invoice) (bool, error) {
	now := e.now()
	created, err := e.UpsertLedger(ctx, repos.Ledger, inv, invoicing.TotalsOf(inv))
	if err == nil {
		err = e.stamp(ctx, repos, inv, entity.Metadata{
			entity.MetaSaleStatus:          inv.Status,
			entity.MetaSaleStatusUpdatedAt: entity.Timestamp(now),
		}, now)
	}
	e.observe(OpReconcile, err)
	return created, err
}

// UpsertLedger crea o actualiza el asiento único SALE-<invoiceId> con el total y estado actuales.
// Categoría SALES si la factura está pagada, SALES_PIPELINE en otro caso.
func (e *Engine) UpsertLedger(ctx context.Context, ledger repository.LedgerRepository, inv *entity.Invoice, totals invoicing.Totals) (bool, error) {
	category := entity.CategorySalesPipeline
	if inv.Status == entity.InvoiceStatusPaid {
		category = entity.CategorySales
	}
	t := &entity.Transaction{
		ReferenceID:   entity.SaleReference(inv.ID),
		Type:          entity.TransactionTypeIncome,
		Category:      category,
		Amount:        totals.TotalAmount,
		Currency:      inv.Currency,
		Description:   fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		Date:          inv.IssueDate,
		PaymentMethod: inv.Metadata.String(entity.MetaPaymentMethod),
		CustomerID:    inv.CustomerID,
		InvoiceID:     inv.ID,
		BranchID:      inv.BranchID,
		Metadata: entity.Metadata{
			"invoiceNumber": inv.InvoiceNumber,
			"invoiceStatus": inv.Status,
		},
	}
	created, err := ledger.Upsert(ctx, t)
	if err != nil {
		return false, fmt.Errorf("upsert ledger %s: %w", t.ReferenceID, err)
	}
	return created, nil
}

// runWrites ejecuta las escrituras de inventario y vehículos y espera a todas.
// En transaccional van de una en una sobre la misma conexión y el primer error corta;
// en best_effort corren en paralelo y un fallo no cancela las demás.
func (e *Engine) runWrites(ctx context.Context, invoiceID string, writes []write) error {
	if len(writes) == 0 {
		return nil
	}
	if e.mode == ModeTransactional {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(1)
		for _, w := range writes {
			g.Go(func() error {
				if err := w.fn(gctx); err != nil {
					return fmt.Errorf("%s: %w", w.ref, err)
				}
				return nil
			})
		}
		return g.Wait()
	}

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for _, w := range writes {
		g.Go(func() error {
			if err := w.fn(ctx); err != nil {
				e.log.Error().Err(err).Str("invoice_id", invoiceID).Str("ref", w.ref).Msg("escritura de cumplimiento fallida")
				return fmt.Errorf("%s: %w", w.ref, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) stamp(ctx context.Context, repos repository.Set, inv *entity.Invoice, patch entity.Metadata, now time.Time) error {
	md := inv.Metadata.Merge(patch)
	if err := repos.Invoices.UpdateMetadata(ctx, inv.ID, md, now); err != nil {
		return fmt.Errorf("stamp metadata %s: %w", inv.ID, err)
	}
	inv.Metadata = md
	inv.UpdatedAt = now
	return nil
}

func (e *Engine) logSkipped(invoiceID string, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	e.log.Warn().Str("invoice_id", invoiceID).Strs("refs", skipped).Msg("referencias inexistentes omitidas")
}

func (e *Engine) observe(op string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	e.rec.ObserveFulfillment(op, outcome)
}
