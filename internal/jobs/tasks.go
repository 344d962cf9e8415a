// Package jobs trabajos asynq: barrido de facturas vencidas y reconciliación del libro mayor.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola única del worker.
	QueueDefault = "default"
	// TaskOverdueSweep marca como OVERDUE las facturas vencidas.
	TaskOverdueSweep = "invoices:overdue_sweep"
	// TaskLedgerReconcile re-ejecuta el upsert del asiento de venta de una factura.
	TaskLedgerReconcile = "ledger:reconcile"
)

// ReconcilePayload payload de TaskLedgerReconcile.
type ReconcilePayload struct {
	InvoiceID string `json:"invoice_id"`
}

// NewOverdueSweepTask tarea del barrido (sin payload).
func NewOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueSweep, nil, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
}

// NewReconcileTask tarea de reconciliación para una factura.
func NewReconcileTask(invoiceID string) (*asynq.Task, error) {
	if invoiceID == "" {
		return nil, fmt.Errorf("reconcile task: invoice id vacío")
	}
	data, err := json.Marshal(ReconcilePayload{InvoiceID: invoiceID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, data, asynq.MaxRetry(10), asynq.Timeout(time.Minute)), nil
}
