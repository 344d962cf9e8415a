// Package memory implementa los puertos de repositorio en memoria.
// RunBilling serializa las unidades de trabajo y restaura el estado si fn falla,
// lo que permite probar la semántica transaccional sin PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

// Store estado completo en memoria.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	invoices  map[string]entity.Invoice
	items     map[string][]entity.InvoiceItem
	inventory map[string]entity.InventoryItem
	vehicles  map[string]entity.Vehicle
	ledger    map[string]entity.Transaction // por reference_id
	payments  map[string]entity.Payment
	payOrder  []string

	failures map[string]error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		invoices:  map[string]entity.Invoice{},
		items:     map[string][]entity.InvoiceItem{},
		inventory: map[string]entity.InventoryItem{},
		vehicles:  map[string]entity.Vehicle{},
		ledger:    map[string]entity.Transaction{},
		payments:  map[string]entity.Payment{},
		failures:  map[string]error{},
	}
}

// Repositories devuelve los repositorios sin transacción.
func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Invoices:  invoiceRepo{s},
		Inventory: inventoryRepo{s},
		Vehicles:  vehicleRepo{s},
		Ledger:    ledgerRepo{s},
		Payments:  paymentRepo{s},
	}
}

// RunBilling ejecuta fn como unidad de trabajo; si fn falla el estado vuelve al snapshot.
func (s *Store) RunBilling(ctx context.Context, fn func(repos repository.Set) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	if err := fn(s.Repositories()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// FailOn hace que la próxima llamada a op ("inventory.UpdateStock", "ledger.Upsert", ...) falle con err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// ── Semillas y lecturas para tests ──────────────────────────────────────────

// PutInventory inserta o reemplaza un ítem de inventario.
func (s *Store) PutInventory(item entity.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[item.ID] = item
}

// PutVehicle inserta o reemplaza un vehículo.
func (s *Store) PutVehicle(v entity.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

// PutTransaction inserta un asiento arbitrario (gastos, ingresos no ligados a facturas).
func (s *Store) PutTransaction(t entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.ReferenceID == "" {
		t.ReferenceID = t.ID
	}
	t.Metadata = t.Metadata.Clone()
	s.ledger[t.ReferenceID] = t
}

// Inventory devuelve una copia del ítem.
func (s *Store) Inventory(id string) (entity.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.inventory[id]
	return it, ok
}

// Vehicle devuelve una copia del vehículo.
func (s *Store) Vehicle(id string) (entity.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	return v, ok
}

// Transactions devuelve todos los asientos ordenados por referencia.
func (s *Store) Transactions() []entity.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Transaction, 0, len(s.ledger))
	for _, t := range s.ledger {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReferenceID < out[j].ReferenceID })
	return out
}

// ── Snapshot ────────────────────────────────────────────────────────────────

type snapshot struct {
	invoices  map[string]entity.Invoice
	items     map[string][]entity.InvoiceItem
	inventory map[string]entity.InventoryItem
	vehicles  map[string]entity.Vehicle
	ledger    map[string]entity.Transaction
	payments  map[string]entity.Payment
	payOrder  []string
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		invoices:  make(map[string]entity.Invoice, len(s.invoices)),
		items:     make(map[string][]entity.InvoiceItem, len(s.items)),
		inventory: make(map[string]entity.InventoryItem, len(s.inventory)),
		vehicles:  make(map[string]entity.Vehicle, len(s.vehicles)),
		ledger:    make(map[string]entity.Transaction, len(s.ledger)),
		payments:  make(map[string]entity.Payment, len(s.payments)),
		payOrder:  slices.Clone(s.payOrder),
	}
	for k, v := range s.invoices {
		v.Metadata = v.Metadata.Clone()
		snap.invoices[k] = v
	}
	for k, v := range s.items {
		snap.items[k] = cloneItems(v)
	}
	for k, v := range s.inventory {
		snap.inventory[k] = v
	}
	for k, v := range s.vehicles {
		snap.vehicles[k] = v
	}
	for k, v := range s.ledger {
		v.Metadata = v.Metadata.Clone()
		snap.ledger[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = snap.invoices
	s.items = snap.items
	s.inventory = snap.inventory
	s.vehicles = snap.vehicles
	s.ledger = snap.ledger
	s.payments = snap.payments
	s.payOrder = snap.payOrder
}

func cloneItems(in []entity.InvoiceItem) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, len(in))
	for i, it := range in {
		it.Metadata = it.Metadata.Clone()
		out[i] = it
	}
	return out
}

// ── Invoices ────────────────────────────────────────────────────────────────

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.Create"); err != nil {
		return err
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	for _, other := range r.s.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
	}
	if err := checkPaid(inv); err != nil {
		return err
	}
	cp := *inv
	cp.Metadata = inv.Metadata.Clone()
	r.s.invoices[inv.ID] = cp
	return nil
}

func (r invoiceRepo) CreateItems(_ context.Context, items []*entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		cp := *it
		cp.Metadata = it.Metadata.Clone()
		r.s.items[it.InvoiceID] = append(r.s.items[it.InvoiceID], cp)
	}
	return nil
}

func (r invoiceRepo) ReplaceItems(_ context.Context, invoiceID string, items []*entity.InvoiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.ReplaceItems"); err != nil {
		return err
	}
	list := make([]entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = invoiceID
		cp := *it
		cp.Metadata = it.Metadata.Clone()
		list = append(list, cp)
	}
	r.s.items[invoiceID] = list
	return nil
}

func (r invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.Update"); err != nil {
		return err
	}
	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := checkPaid(inv); err != nil {
		return err
	}
	cp := *inv
	cp.Metadata = inv.Metadata.Clone()
	r.s.invoices[inv.ID] = cp
	return nil
}

func (r invoiceRepo) UpdateMetadata(_ context.Context, id string, md entity.Metadata, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.UpdateMetadata"); err != nil {
		return err
	}
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Metadata = md.Clone()
	inv.UpdatedAt = updatedAt
	r.s.invoices[id] = inv
	return nil
}

func (r invoiceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	// ON DELETE RESTRICT en payments.invoice_id
	for _, p := range r.s.payments {
		if p.InvoiceID == id {
			return domain.ErrPaidInvoiceDelete
		}
	}
	delete(r.s.invoices, id)
	delete(r.s.items, id)
	// ON DELETE SET NULL en transactions.invoice_id
	for ref, t := range r.s.ledger {
		if t.InvoiceID == id {
			t.InvoiceID = ""
			r.s.ledger[ref] = t
		}
	}
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	inv.Metadata = inv.Metadata.Clone()
	return &inv, nil
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r invoiceRepo) GetItems(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := cloneItems(r.s.items[invoiceID])
	out := make([]*entity.InvoiceItem, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out, nil
}

func (r invoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		if f.BranchID != "" && inv.BranchID != f.BranchID {
			continue
		}
		if f.From != nil && inv.IssueDate.Before(*f.From) {
			continue
		}
		if f.To != nil && !inv.IssueDate.Before(*f.To) {
			continue
		}
		cp := inv
		cp.Metadata = inv.Metadata.Clone()
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].IssueDate.Equal(all[j].IssueDate) {
			return all[i].InvoiceNumber > all[j].InvoiceNumber
		}
		return all[i].IssueDate.After(all[j].IssueDate)
	})
	total := len(all)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			return nil, total, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r invoiceRepo) ListOverdueCandidates(_ context.Context, now time.Time, limit int) ([]*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status != entity.InvoiceStatusSent && inv.Status != entity.InvoiceStatusPartiallyPaid {
			continue
		}
		if inv.DueDate == nil || !inv.DueDate.Before(now) {
			continue
		}
		cp := inv
		cp.Metadata = inv.Metadata.Clone()
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// checkPaid emula el CHECK paid_amount BETWEEN 0 AND total_amount.
func checkPaid(inv *entity.Invoice) error {
	if inv.PaidAmount.IsNegative() || inv.PaidAmount.GreaterThan(inv.TotalAmount) {
		return fmt.Errorf("check constraint invoices_paid_amount_check violated")
	}
	return nil
}

// ── Inventory & vehicles ────────────────────────────────────────────────────

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) GetByIDs(_ context.Context, ids []string, _ bool) (map[string]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*entity.InventoryItem, len(ids))
	for _, id := range ids {
		if it, ok := r.s.inventory[id]; ok {
			out[id] = &it
		}
	}
	return out, nil
}

func (r inventoryRepo) UpdateStock(_ context.Context, id string, quantity int, status string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("inventory.UpdateStock"); err != nil {
		return err
	}
	it, ok := r.s.inventory[id]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity < 0 {
		return fmt.Errorf("check constraint inventory_items_quantity_check violated")
	}
	it.Quantity, it.Status, it.UpdatedAt = quantity, status, updatedAt
	r.s.inventory[id] = it
	return nil
}

type vehicleRepo struct{ s *Store }

func (r vehicleRepo) GetByIDs(_ context.Context, ids []string, _ bool) (map[string]*entity.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*entity.Vehicle, len(ids))
	for _, id := range ids {
		if v, ok := r.s.vehicles[id]; ok {
			out[id] = &v
		}
	}
	return out, nil
}

func (r vehicleRepo) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("vehicles.UpdateStatus"); err != nil {
		return err
	}
	v, ok := r.s.vehicles[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status, v.UpdatedAt = status, updatedAt
	r.s.vehicles[id] = v
	return nil
}

// ── Ledger ──────────────────────────────────────────────────────────────────

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) GetByReference(_ context.Context, ref string) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.ledger[ref]
	if !ok {
		return nil, nil
	}
	t.Metadata = t.Metadata.Clone()
	return &t, nil
}

func (r ledgerRepo) Upsert(_ context.Context, t *entity.Transaction) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("ledger.Upsert"); err != nil {
		return false, err
	}
	now := time.Now()
	existing, ok := r.s.ledger[t.ReferenceID]
	if ok {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	} else {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	cp.Metadata = t.Metadata.Clone()
	r.s.ledger[t.ReferenceID] = cp
	return !ok, nil
}

// ── Payments ────────────────────────────────────────────────────────────────

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payments.Create"); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.s.payments[p.ID] = *p
	r.s.payOrder = append(r.s.payOrder, p.ID)
	return nil
}

func (r paymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r paymentRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Payment
	for _, id := range r.s.payOrder {
		if p := r.s.payments[id]; p.InvoiceID == invoiceID {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r paymentRepo) SumRefunds(_ context.Context, paymentID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, p := range r.s.payments {
		if p.RefundOfID == paymentID {
			sum = sum.Add(p.Amount.Abs())
		}
	}
	return sum, nil
}

// ── Finance (lectura) ───────────────────────────────────────────────────────

// ListTransactions implementa repository.FinanceRepository.
func (s *Store) ListTransactions(_ context.Context, f repository.ReportFilter) ([]*entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Transaction
	for _, t := range s.ledger {
		if t.Date.Before(f.From) || !t.Date.Before(f.To) {
			continue
		}
		if f.BranchID != "" && t.BranchID != f.BranchID {
			continue
		}
		cp := t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ListInvoices implementa repository.FinanceRepository.
func (s *Store) ListInvoices(_ context.Context, f repository.ReportFilter) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Invoice
	for _, inv := range s.invoices {
		if strings.EqualFold(inv.Status, entity.InvoiceStatusDraft) {
			continue
		}
		if inv.IssueDate.Before(f.From) || !inv.IssueDate.Before(f.To) {
			continue
		}
		if f.BranchID != "" && inv.BranchID != f.BranchID {
			continue
		}
		cp := inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.Before(out[j].IssueDate) })
	return out, nil
}

var (
	_ repository.InvoiceRepository   = invoiceRepo{}
	_ repository.InventoryRepository = inventoryRepo{}
	_ repository.VehicleRepository   = vehicleRepo{}
	_ repository.LedgerRepository    = ledgerRepo{}
	_ repository.PaymentRepository   = paymentRepo{}
	_ repository.FinanceRepository   = (*Store)(nil)
)
