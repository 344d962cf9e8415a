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

// Resultados reportados al PaymentRecorder.
const (
	paymentKindCharge = "payment"
	paymentKindRefund = "refund"

	paymentOutcomeOK       = "ok"
	paymentOutcomeRejected = "rejected"
	paymentOutcomeError    = "error"
)

type nopPaymentRecorder struct{}

func (nopPaymentRecorder) ObservePayment(string, string) {}

// PaymentConfig parámetros de pagos.
type PaymentConfig struct {
	LockTTL         time.Duration
	StrictItemTypes bool
}

// PaymentUseCase aplica pagos y reembolsos sobre facturas manteniendo
// 0 <= paid_amount <= total_amount. Toda validación ocurre antes de cualquier escritura.
type PaymentUseCase struct {
	lc      *lifecycle
	locker  InvoiceLocker
	gateway PaymentGateway
	rec     PaymentRecorder
	cfg     PaymentConfig
	log     zerolog.Logger
	now     func() time.Time
}

// NewPaymentUseCase construye el caso de uso. scheduler y rec pueden ser nil.
func NewPaymentUseCase(
	tx BillingTxRunner,
	engine *fulfillment.Engine,
	locker InvoiceLocker,
	gateway PaymentGateway,
	scheduler ReconcileScheduler,
	rec PaymentRecorder,
	cfg PaymentConfig,
	log zerolog.Logger,
) *PaymentUseCase {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Second
	}
	if rec == nil {
		rec = nopPaymentRecorder{}
	}
	return &PaymentUseCase{
		lc: &lifecycle{
			tx:        tx,
			engine:    engine,
			scheduler: scheduler,
			strict:    cfg.StrictItemTypes,
			log:       log,
		},
		locker:  locker,
		gateway: gateway,
		rec:     rec,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// ProcessPayment registra un pago. La factura pasa a PAID si queda saldada
// (y se aplica el cumplimiento: vehículos vendidos, asiento SALES) o a PARTIALLY_PAID.
func (uc *PaymentUseCase) ProcessPayment(ctx context.Context, userID, invoiceID string, in dto.PaymentRequest) (res *dto.PaymentResultResponse, err error) {
	defer func() { uc.observe(paymentKindCharge, err) }()

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	inv, err := uc.lc.tx.Repositories().Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := validatePayment(inv, in.Amount, method); err != nil {
		return nil, err
	}

	unlock, err := uc.lock(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		payment *entity.Payment
		from    string
	)
	err = uc.lc.run(ctx, invoiceID,
		func(repos repository.Set) error {
			// relectura con bloqueo de fila: el estado pudo cambiar antes del lock
			inv, err = repos.Invoices.GetForUpdate(ctx, invoiceID)
			if err != nil {
				return fmt.Errorf("get invoice: %w", err)
			}
			if err := validatePayment(inv, in.Amount, method); err != nil {
				return err
			}

			txnID, err := uc.gateway.Charge(ctx, method, in.Amount, inv.InvoiceNumber)
			if err != nil {
				return fmt.Errorf("pasarela %s: %w", method, err)
			}

			now := uc.now()
			customerID := in.CustomerID
			if customerID == "" {
				customerID = inv.CustomerID
			}
			payment = &entity.Payment{
				ID:            uuid.New().String(),
				InvoiceID:     inv.ID,
				CustomerID:    customerID,
				Amount:        in.Amount,
				PaymentMethod: method,
				TransactionID: txnID,
				Status:        entity.PaymentStatusCompleted,
				Notes:         in.Notes,
				CreatedBy:     userID,
				CreatedAt:     now,
			}
			if err := repos.Payments.Create(ctx, payment); err != nil {
				return err
			}

			from = inv.Status
			inv.PaidAmount = inv.PaidAmount.Add(in.Amount)
			inv.PaidAt = &now
			if inv.PaidAmount.Equal(inv.TotalAmount) {
				inv.Status = entity.InvoiceStatusPaid
			} else {
				inv.Status = entity.InvoiceStatusPartiallyPaid
			}
			inv.Metadata = inv.Metadata.Merge(entity.Metadata{entity.MetaPaymentMethod: method})
			inv.UpdatedAt = now
			return repos.Invoices.Update(ctx, inv)
		},
		func(repos repository.Set) error {
			return uc.lc.onTransition(ctx, repos, inv, from)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", invoiceID).
		Str("payment_id", payment.ID).
		Str("method", method).
		Str("amount", in.Amount.String()).
		Str("status", inv.Status).
		Msg("pago registrado")
	return toPaymentResult(payment, inv), nil
}

// RefundPayment registra un reembolso (monto negativo) contra un pago COMPLETED.
// Sin monto se reembolsa lo que quede del pago. Si la factura activa queda en cero
// pasa a REFUNDED y se liberan sus efectos como en el cambio de estado manual.
func (uc *PaymentUseCase) RefundPayment(ctx context.Context, userID, paymentID string, in dto.RefundRequest) (res *dto.PaymentResultResponse, err error) {
	defer func() { uc.observe(paymentKindRefund, err) }()

	repos := uc.lc.tx.Repositories()
	original, err := repos.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if original == nil {
		return nil, domain.ErrNotFound
	}
	if original.IsRefund() || original.Status != entity.PaymentStatusCompleted {
		return nil, domain.ErrPaymentNotRefundable
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	unlock, err := uc.lock(ctx, original.InvoiceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		refund *entity.Payment
		inv    *entity.Invoice
		from   string
	)
	err = uc.lc.run(ctx, original.InvoiceID,
		func(repos repository.Set) error {
			inv, err = repos.Invoices.GetForUpdate(ctx, original.InvoiceID)
			if err != nil {
				return fmt.Errorf("get invoice: %w", err)
			}
			if inv == nil {
				return domain.ErrNotFound
			}
			refunded, err := repos.Payments.SumRefunds(ctx, original.ID)
			if err != nil {
				return fmt.Errorf("sum refunds: %w", err)
			}
			remaining := original.Amount.Sub(refunded)
			if !remaining.IsPositive() {
				return domain.ErrPaymentNotRefundable
			}
			amount := remaining
			if in.Amount != nil {
				amount = *in.Amount
			}
			if amount.GreaterThan(remaining) {
				return fmt.Errorf("%w: máximo %s", domain.ErrRefundExceedsPayment, remaining)
			}
			if amount.GreaterThan(inv.PaidAmount) {
				return fmt.Errorf("%w: pagado en factura %s", domain.ErrRefundExceedsPayment, inv.PaidAmount)
			}

			txnID, err := uc.gateway.Refund(ctx, original.PaymentMethod, original.TransactionID, amount)
			if err != nil {
				return fmt.Errorf("pasarela %s: %w", original.PaymentMethod, err)
			}

			now := uc.now()
			refund = &entity.Payment{
				ID:            uuid.New().String(),
				InvoiceID:     inv.ID,
				CustomerID:    original.CustomerID,
				Amount:        amount.Neg(),
				PaymentMethod: original.PaymentMethod,
				TransactionID: txnID,
				Status:        entity.PaymentStatusRefunded,
				Notes:         in.Notes,
				RefundOfID:    original.ID,
				CreatedBy:     userID,
				CreatedAt:     now,
			}
			if err := repos.Payments.Create(ctx, refund); err != nil {
				return err
			}

			from = inv.Status
			inv.PaidAmount = inv.PaidAmount.Sub(amount)
			inv.Status = statusAfterRefund(from, inv.PaidAmount)
			inv.UpdatedAt = now
			return repos.Invoices.Update(ctx, inv)
		},
		func(repos repository.Set) error {
			if from == inv.Status {
				return nil
			}
			return uc.lc.onTransition(ctx, repos, inv, from)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("payment_id", original.ID).
		Str("refund_id", refund.ID).
		Str("amount", refund.Amount.String()).
		Str("status", inv.Status).
		Msg("reembolso registrado")
	return toPaymentResult(refund, inv), nil
}

// statusAfterRefund estado de la factura tras un reembolso que deja paid como pagado.
// Una factura ya liberada (CANCELLED, DRAFT) conserva su estado.
func statusAfterRefund(from string, paid decimal.Decimal) string {
	if !invoicing.IsActive(from) {
		return from
	}
	if paid.IsZero() {
		return entity.InvoiceStatusRefunded
	}
	return entity.InvoiceStatusPartiallyPaid
}

// ListPayments pagos y reembolsos de una factura en orden de registro.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, invoiceID string) ([]dto.PaymentResponse, error) {
	repos := uc.lc.tx.Repositories()
	inv, err := repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	list, err := repos.Payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// validatePayment orden: factura existe, monto > 0, no excede el total,
// estado admite pagos, método soportado.
func validatePayment(inv *entity.Invoice, amount decimal.Decimal, method string) error {
	if inv == nil {
		return domain.ErrNotFound
	}
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if inv.PaidAmount.Add(amount).GreaterThan(inv.TotalAmount) {
		return fmt.Errorf("%w: saldo pendiente %s", domain.ErrExceedsTotal, inv.Balance())
	}
	if !invoicing.AcceptsPayments(inv.Status) {
		return fmt.Errorf("%w: estado %s", domain.ErrInvoiceNotPayable, inv.Status)
	}
	switch method {
	case entity.PaymentMethodCash, entity.PaymentMethodCreditCard,
		entity.PaymentMethodBankTransfer, entity.PaymentMethodCheck:
		return nil
	}
	return fmt.Errorf("%w: %q", domain.ErrUnsupportedMethod, method)
}

func (uc *PaymentUseCase) lock(ctx context.Context, invoiceID string) (func(), error) {
	release, err := uc.locker.Acquire(ctx, "lock:invoice:"+invoiceID+":payments", uc.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	return func() {
		// el ctx de la petición puede estar cancelado; el lock se libera igual
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("no se pudo liberar el lock de pago")
		}
	}, nil
}

func (uc *PaymentUseCase) observe(kind string, err error) {
	switch {
	case err == nil:
		uc.rec.ObservePayment(kind, paymentOutcomeOK)
	case errors.Is(err, context.Canceled):
		uc.rec.ObservePayment(kind, paymentOutcomeError)
	case domain.Code(err) == domain.CodeInternal:
		uc.rec.ObservePayment(kind, paymentOutcomeError)
	default:
		uc.rec.ObservePayment(kind, paymentOutcomeRejected)
	}
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Status:        p.Status,
		Notes:         p.Notes,
		RefundOfID:    p.RefundOfID,
		CreatedAt:     p.CreatedAt,
	}
}

func toPaymentResult(p *entity.Payment, inv *entity.Invoice) *dto.PaymentResultResponse {
	return &dto.PaymentResultResponse{
		Payment:       toPaymentResponse(p),
		InvoiceStatus: inv.Status,
		PaidAmount:    inv.PaidAmount,
		Balance:       inv.Balance(),
	}
}
