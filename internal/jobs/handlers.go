package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/elhamd/elhamd-api/internal/domain"
)

// OverdueMarker lo implementa billing.InvoiceUseCase.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int, error)
}

// LedgerReconciler lo implementa billing.InvoiceUseCase.
type LedgerReconciler interface {
	ReconcileLedger(ctx context.Context, invoiceID string) error
}

// JobRecorder métricas de ejecución.
type JobRecorder interface {
	ObserveJob(task, outcome string)
}

type nopJobRecorder struct{}

func (nopJobRecorder) ObserveJob(string, string) {}

// Handlers procesadores de las tareas del worker.
type Handlers struct {
	marker     OverdueMarker
	reconciler LedgerReconciler
	rec        JobRecorder
	log        zerolog.Logger
}

// NewHandlers construye los procesadores. rec puede ser nil.
func NewHandlers(marker OverdueMarker, reconciler LedgerReconciler, rec JobRecorder, log zerolog.Logger) *Handlers {
	if rec == nil {
		rec = nopJobRecorder{}
	}
	return &Handlers{marker: marker, reconciler: reconciler, rec: rec, log: log}
}

// TaskHandlers registro para el ServeMux del worker.
func (h *Handlers) TaskHandlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskOverdueSweep, Handler: h.HandleOverdueSweep},
		{Type: TaskLedgerReconcile, Handler: h.HandleReconcile},
	}
}

// HandleOverdueSweep procesa TaskOverdueSweep. Fallos parciales reintentan la tarea completa;
// las facturas ya marcadas dejan de ser candidatas.
func (h *Handlers) HandleOverdueSweep(ctx context.Context, _ *asynq.Task) error {
	marked, err := h.marker.MarkOverdue(ctx)
	if err != nil {
		h.rec.ObserveJob(TaskOverdueSweep, "error")
		h.log.Error().Err(err).Int("marked", marked).Str("job", TaskOverdueSweep).Msg("barrido de vencidas con errores")
		return err
	}
	h.rec.ObserveJob(TaskOverdueSweep, "ok")
	h.log.Info().Int("marked", marked).Str("job", TaskOverdueSweep).Msg("barrido de vencidas")
	return nil
}

// HandleReconcile procesa TaskLedgerReconcile. Un payload inválido o una factura
// inexistente no se reintentan.
func (h *Handlers) HandleReconcile(ctx context.Context, t *asynq.Task) error {
	var p ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.InvoiceID == "" {
		h.rec.ObserveJob(TaskLedgerReconcile, "skipped")
		return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
	}
	log := h.log.With().Str("job", TaskLedgerReconcile).Str("invoice_id", p.InvoiceID).Logger()

	if err := h.reconciler.ReconcileLedger(ctx, p.InvoiceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.rec.ObserveJob(TaskLedgerReconcile, "skipped")
			log.Warn().Msg("factura inexistente, reconciliación descartada")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		h.rec.ObserveJob(TaskLedgerReconcile, "error")
		log.Error().Err(err).Msg("reconciliación fallida")
		return err
	}
	h.rec.ObserveJob(TaskLedgerReconcile, "ok")
	log.Info().Msg("libro mayor reconciliado")
	return nil
}
