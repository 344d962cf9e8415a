package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/application/dto"
	"github.com/elhamd/elhamd-api/internal/application/fulfillment"
	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

const overdueBatchSize = 500

// InvoiceConfig parámetros de facturación.
type InvoiceConfig struct {
	Prefix          string
	DefaultCurrency string
	StrictItemTypes bool
}

// InvoiceUseCase ciclo de vida de la factura: alta, edición, cambios de estado y baja,
// con los efectos de cumplimiento sobre stock, vehículos y libro mayor.
type InvoiceUseCase struct {
	lc  *lifecycle
	cfg InvoiceConfig
	log zerolog.Logger
	now func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. scheduler puede ser nil.
func NewInvoiceUseCase(
	tx BillingTxRunner,
	engine *fulfillment.Engine,
	scheduler ReconcileScheduler,
	cfg InvoiceConfig,
	log zerolog.Logger,
) *InvoiceUseCase {
	if cfg.Prefix == "" {
		cfg.Prefix = "INV"
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "EGP"
	}
	return &InvoiceUseCase{
		lc: &lifecycle{
			tx:        tx,
			engine:    engine,
			scheduler: scheduler,
			strict:    cfg.StrictItemTypes,
			log:       log,
		},
		cfg: cfg,
		log: log,
		now: time.Now,
	}
}

// ── Alta ──────────────────────────────────────────────────────────────────────

// CreateInvoice valida, calcula totales, persiste cabecera y líneas y, si el estado
// es activo, aplica los efectos de cumplimiento con ajuste de inventario.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customer_id es obligatorio", domain.ErrInvalidInput)
	}
	status := strings.ToUpper(strings.TrimSpace(in.Status))
	if status == "" {
		status = entity.InvoiceStatusDraft
	}
	if status != entity.InvoiceStatusDraft && status != entity.InvoiceStatusSent {
		return nil, fmt.Errorf("%w: una factura nueva solo puede ser DRAFT o SENT", domain.ErrInvalidInput)
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		Status:        status,
		Currency:      uc.currency(in.Currency),
		CustomerID:    in.CustomerID,
		BranchID:      in.BranchID,
		IssueDate:     now,
		DueDate:       in.DueDate,
		Notes:         in.Notes,
		Metadata:      entity.Metadata(in.Metadata).Clone(),
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.IssueDate != nil {
		inv.IssueDate = *in.IssueDate
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = uc.nextInvoiceNumber(now)
	}
	items := buildItems(inv.ID, in.Items)
	applyTotals(inv, invoicing.ComputeTotals(items))
	links := uc.lc.links(items)

	// referencias validadas antes de persistir: un id inexistente es NOT_FOUND
	if err := uc.validateRefs(ctx, uc.lc.tx.Repositories(), links, invoicing.Links{}); err != nil {
		return nil, err
	}

	err := uc.lc.run(ctx, inv.ID,
		func(repos repository.Set) error {
			if err := repos.Invoices.Create(ctx, inv); err != nil {
				return err
			}
			return repos.Invoices.CreateItems(ctx, items)
		},
		func(repos repository.Set) error {
			if !invoicing.IsActive(inv.Status) {
				return nil
			}
			return uc.apply(ctx, repos, inv, links, true)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("status", inv.Status).
		Str("total", inv.TotalAmount.String()).
		Msg("factura creada")
	return uc.toResponse(inv, items), nil
}

// ── Edición ───────────────────────────────────────────────────────────────────

// UpdateInvoice reemplaza las líneas y recalcula totales. Si el stock ya estaba
// ajustado libera las líneas anteriores y aplica las nuevas.
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	var items []*entity.InvoiceItem
	var oldLinks, newLinks invoicing.Links
	err := uc.lc.run(ctx, id,
		func(repos repository.Set) error {
			var err error
			inv, err = uc.loadForUpdate(ctx, repos, id)
			if err != nil {
				return err
			}
			if !invoicing.IsEditable(inv.Status) {
				return fmt.Errorf("%w: estado %s", domain.ErrInvoiceNotEditable, inv.Status)
			}
			oldItems, err := repos.Invoices.GetItems(ctx, id)
			if err != nil {
				return fmt.Errorf("get items: %w", err)
			}
			items = buildItems(id, in.Items)
			totals := invoicing.ComputeTotals(items)
			if totals.TotalAmount.LessThan(inv.PaidAmount) {
				return fmt.Errorf("%w: total %s < pagado %s", domain.ErrTotalBelowPaidAmount, totals.TotalAmount, inv.PaidAmount)
			}
			oldLinks, newLinks = uc.lc.links(oldItems), uc.lc.links(items)
			if err := uc.validateRefs(ctx, repos, newLinks, oldLinks); err != nil {
				return err
			}

			if in.CustomerID != nil {
				inv.CustomerID = *in.CustomerID
			}
			if in.BranchID != nil {
				inv.BranchID = *in.BranchID
			}
			if in.Currency != nil {
				inv.Currency = uc.currency(*in.Currency)
			}
			if in.DueDate != nil {
				inv.DueDate = in.DueDate
			}
			if in.Notes != nil {
				inv.Notes = *in.Notes
			}
			applyTotals(inv, totals)
			inv.UpdatedAt = uc.now()

			if err := repos.Invoices.ReplaceItems(ctx, id, items); err != nil {
				return err
			}
			return repos.Invoices.Update(ctx, inv)
		},
		func(repos repository.Set) error {
			adjusted := inv.InventoryAdjusted()
			active := invoicing.IsActive(inv.Status)
			if !adjusted && !active {
				return nil
			}
			refs, err := uc.lc.engine.LoadRefs(ctx, repos, oldLinks, newLinks)
			if err != nil {
				return err
			}
			// release y apply comparten mapas: apply ve el stock ya restaurado
			if _, err := uc.lc.engine.Release(ctx, repos, fulfillment.ReleaseInput{
				Invoice:          inv,
				Links:            oldLinks,
				InventoryMap:     refs.Inventory,
				VehicleMap:       refs.Vehicles,
				RestoreInventory: adjusted,
			}); err != nil {
				return err
			}
			if !active {
				return nil
			}
			_, err = uc.lc.engine.Apply(ctx, repos, fulfillment.ApplyInput{
				Invoice:         inv,
				Links:           newLinks,
				InventoryMap:    refs.Inventory,
				VehicleMap:      refs.Vehicles,
				Totals:          invoicing.TotalsOf(inv),
				AdjustInventory: true,
			})
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", id).Str("total", inv.TotalAmount.String()).Msg("factura actualizada")
	return uc.toResponse(inv, items), nil
}

// ── Estado ────────────────────────────────────────────────────────────────────

// ChangeStatus valida la transición y aplica o libera los efectos de cumplimiento.
// Marcar PAID manualmente salda la factura; REFUNDED deja el pagado en cero.
func (uc *InvoiceUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.InvoiceResponse, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !invoicing.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, status)
	}

	var (
		inv  *entity.Invoice
		from string
	)
	err := uc.lc.run(ctx, id,
		func(repos repository.Set) error {
			var err error
			inv, err = uc.loadForUpdate(ctx, repos, id)
			if err != nil {
				return err
			}
			from = inv.Status
			if from == status {
				return nil
			}
			if !invoicing.CanTransition(from, status) {
				return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, status)
			}
			now := uc.now()
			inv.Status = status
			switch status {
			case entity.InvoiceStatusPaid:
				inv.PaidAmount = inv.TotalAmount
				if inv.PaidAt == nil {
					inv.PaidAt = &now
				}
			case entity.InvoiceStatusRefunded:
				inv.PaidAmount = decimal.Zero
			}
			inv.UpdatedAt = now
			return repos.Invoices.Update(ctx, inv)
		},
		func(repos repository.Set) error {
			if from == status {
				return nil
			}
			return uc.lc.onTransition(ctx, repos, inv, from)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", id).Str("from", from).Str("to", status).Msg("estado de factura cambiado")
	return uc.GetInvoice(ctx, id)
}

// MarkOverdue pasa a OVERDUE las facturas SENT/PARTIALLY_PAID vencidas.
// Devuelve cuántas se marcaron; los fallos individuales no detienen el barrido.
func (uc *InvoiceUseCase) MarkOverdue(ctx context.Context) (int, error) {
	candidates, err := uc.lc.tx.Repositories().Invoices.ListOverdueCandidates(ctx, uc.now(), overdueBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list overdue candidates: %w", err)
	}
	var (
		marked int
		errs   []error
	)
	for _, inv := range candidates {
		if _, err := uc.ChangeStatus(ctx, inv.ID, entity.InvoiceStatusOverdue); err != nil {
			uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo marcar vencida")
			errs = append(errs, fmt.Errorf("%s: %w", inv.ID, err))
			continue
		}
		marked++
	}
	uc.log.Info().Int("candidates", len(candidates)).Int("marked", marked).Msg("barrido de vencidas")
	return marked, errors.Join(errs...)
}

// ── Baja ──────────────────────────────────────────────────────────────────────

// DeleteInvoice elimina la factura (las líneas caen en cascada) tras liberar sus efectos.
// Una factura pagada o con pagos no se puede eliminar.
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, id string) error {
	var inv *entity.Invoice
	check := func(repos repository.Set) error {
		var err error
		inv, err = uc.loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		// una factura que alguna vez se pagó queda como registro, aunque luego se reembolse
		if inv.Status == entity.InvoiceStatusPaid || inv.Status == entity.InvoiceStatusRefunded ||
			inv.PaidAt != nil || inv.PaidAmount.IsPositive() {
			return domain.ErrPaidInvoiceDelete
		}
		payments, err := repos.Payments.ListByInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		if len(payments) > 0 {
			return domain.ErrPaidInvoiceDelete
		}
		return nil
	}
	release := func(repos repository.Set) error {
		if !inv.InventoryAdjusted() && !invoicing.IsActive(inv.Status) {
			return nil
		}
		return uc.lc.release(ctx, repos, inv)
	}

	var err error
	if uc.lc.engine.Mode() == fulfillment.ModeTransactional {
		err = uc.lc.tx.RunBilling(ctx, func(repos repository.Set) error {
			if err := check(repos); err != nil {
				return err
			}
			if err := release(repos); err != nil {
				return err
			}
			return repos.Invoices.Delete(ctx, id)
		})
	} else {
		repos := uc.lc.tx.Repositories()
		if err = check(repos); err == nil {
			if err = release(repos); err == nil {
				err = uc.lc.tx.RunBilling(ctx, func(repos repository.Set) error {
					return repos.Invoices.Delete(ctx, id)
				})
			}
		}
	}
	if err != nil {
		return err
	}
	uc.log.Info().Str("invoice_id", id).Msg("factura eliminada")
	return nil
}

// ── Lectura ───────────────────────────────────────────────────────────────────

// GetInvoice devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	repos := uc.lc.tx.Repositories()
	inv, err := repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := repos.Invoices.GetItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return uc.toResponse(inv, items), nil
}

// ListInvoices listado paginado sin líneas.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, q dto.ListInvoicesQuery) (*dto.InvoiceListResponse, error) {
	q.DefaultPage()
	filter := repository.InvoiceFilter{
		Status:     strings.ToUpper(q.Status),
		CustomerID: q.CustomerID,
		BranchID:   q.BranchID,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.From != "" {
		from, err := time.Parse(time.DateOnly, q.From)
		if err != nil {
			return nil, fmt.Errorf("%w: from", domain.ErrInvalidInput)
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.DateOnly, q.To)
		if err != nil {
			return nil, fmt.Errorf("%w: to", domain.ErrInvalidInput)
		}
		to = to.AddDate(0, 0, 1) // inclusivo
		filter.To = &to
	}

	list, total, err := uc.lc.tx.Repositories().Invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, inv := range list {
		out.Items = append(out.Items, *uc.toResponse(inv, nil))
	}
	return out, nil
}

// ReconcileLedger re-ejecuta el upsert del asiento SALE-<id> y el sello saleStatus.
// No toca stock ni vehículos. Las facturas inactivas no tienen asiento que reconciliar.
func (uc *InvoiceUseCase) ReconcileLedger(ctx context.Context, id string) error {
	return uc.lc.tx.RunBilling(ctx, func(repos repository.Set) error {
		inv, err := uc.loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		if !invoicing.IsActive(inv.Status) {
			uc.log.Debug().Str("invoice_id", id).Str("status", inv.Status).Msg("reconciliación omitida")
			return nil
		}
		created, err := uc.lc.engine.Reconcile(ctx, repos, inv)
		if err != nil {
			return err
		}
		uc.log.Info().Str("invoice_id", id).Bool("ledger_created", created).Msg("libro mayor reconciliado")
		return nil
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (uc *InvoiceUseCase) loadForUpdate(ctx context.Context, repos repository.Set, id string) (*entity.Invoice, error) {
	inv, err := repos.Invoices.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// apply carga las referencias de links y aplica el cumplimiento.
func (uc *InvoiceUseCase) apply(ctx context.Context, repos repository.Set, inv *entity.Invoice, links invoicing.Links, adjust bool) error {
	refs, err := uc.lc.engine.LoadRefs(ctx, repos, links)
	if err != nil {
		return err
	}
	_, err = uc.lc.engine.Apply(ctx, repos, fulfillment.ApplyInput{
		Invoice:         inv,
		Links:           links,
		InventoryMap:    refs.Inventory,
		VehicleMap:      refs.Vehicles,
		Totals:          invoicing.TotalsOf(inv),
		AdjustInventory: adjust,
	})
	return err
}

// validateRefs exige que todo repuesto y vehículo enlazado exista, y que ningún
// vehículo ya vendido se enlace de nuevo salvo que ya estuviera en la factura.
func (uc *InvoiceUseCase) validateRefs(ctx context.Context, repos repository.Set, links, current invoicing.Links) error {
	if len(links.InventoryIDs) == 0 && len(links.VehicleIDs) == 0 {
		return nil
	}
	refs, err := uc.lc.engine.LoadRefs(ctx, repos, links)
	if err != nil {
		return err
	}
	if missing := refs.Missing(links); len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, strings.Join(missing, ", "))
	}
	for _, id := range links.VehicleIDs {
		if refs.Vehicles[id].Status == entity.VehicleStatusSold && !current.HasVehicle(id) {
			return fmt.Errorf("%w: %s", domain.ErrVehicleUnavailable, id)
		}
	}
	return nil
}

func (uc *InvoiceUseCase) currency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return uc.cfg.DefaultCurrency
	}
	return c
}

// nextInvoiceNumber <prefijo>-<yyyymm>-<6 hex>.
func (uc *InvoiceUseCase) nextInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", uc.cfg.Prefix, now.Format("200601"), suffix)
}

func validateItems(items []dto.InvoiceItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: la factura necesita al menos una línea", domain.ErrInvalidInput)
	}
	hundred := decimal.NewFromInt(100)
	for i, it := range items {
		switch {
		case strings.TrimSpace(it.Description) == "":
			return fmt.Errorf("%w: items[%d].description es obligatorio", domain.ErrInvalidInput, i)
		case !it.Quantity.IsPositive():
			return fmt.Errorf("%w: items[%d].quantity debe ser mayor que cero", domain.ErrInvalidInput, i)
		case it.UnitPrice.IsNegative():
			return fmt.Errorf("%w: items[%d].unit_price no puede ser negativo", domain.ErrInvalidInput, i)
		case it.Discount.IsNegative():
			return fmt.Errorf("%w: items[%d].discount no puede ser negativo", domain.ErrInvalidInput, i)
		case it.TaxRate.IsNegative() || it.TaxRate.GreaterThan(hundred):
			return fmt.Errorf("%w: items[%d].tax_rate fuera de rango", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// buildItems convierte la petición en líneas; los campos de enlace van a la metadata.
func buildItems(invoiceID string, in []dto.InvoiceItemRequest) []*entity.InvoiceItem {
	items := make([]*entity.InvoiceItem, 0, len(in))
	for i, r := range in {
		md := entity.Metadata(r.Metadata).Clone()
		if r.ItemType != "" {
			md["itemType"] = strings.ToUpper(r.ItemType)
		}
		if r.InventoryItemID != "" {
			md["inventoryItemId"] = r.InventoryItemID
		}
		if r.VehicleID != "" {
			md["vehicleId"] = r.VehicleID
		}
		items = append(items, &entity.InvoiceItem{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			Description: strings.TrimSpace(r.Description),
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			Discount:    r.Discount,
			TaxRate:     r.TaxRate,
			Metadata:    md,
			Position:    i,
		})
	}
	return items
}

func applyTotals(inv *entity.Invoice, t invoicing.Totals) {
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.TotalAmount
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		Currency:      inv.Currency,
		CustomerID:    inv.CustomerID,
		BranchID:      inv.BranchID,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		PaidAmount:    inv.PaidAmount,
		Balance:       inv.Balance(),
		Notes:         inv.Notes,
		Metadata:      inv.Metadata,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if len(items) == 0 {
		return out
	}
	types := itemTypes(uc.lc.links(items))
	for _, it := range items {
		out.Items = append(out.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			ItemType:    string(types[it.ID]),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			TaxRate:     it.TaxRate,
			TaxAmount:   it.TaxAmount,
			TotalPrice:  it.TotalPrice,
			Metadata:    it.Metadata,
		})
	}
	return out
}

func itemTypes(links invoicing.Links) map[string]invoicing.ItemType {
	out := make(map[string]invoicing.ItemType, len(links.Items))
	for _, l := range links.Items {
		out[l.ItemID()] = l.Type()
	}
	return out
}
