package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/elhamd/elhamd-api/internal/application/billing"
)

var _ billing.ReconcileScheduler = (*Client)(nil)

// Client encola tareas en Redis.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// ScheduleReconcile encola ledger:reconcile. Un mismo invoice id pendiente no se duplica.
func (c *Client) ScheduleReconcile(ctx context.Context, invoiceID string) error {
	task, err := NewReconcileTask(invoiceID)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.TaskID("reconcile:"+invoiceID))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskLedgerReconcile, err)
	}
	return nil
}

// EnqueueOverdueSweep encola un barrido inmediato.
func (c *Client) EnqueueOverdueSweep(ctx context.Context) error {
	if _, err := c.client.EnqueueContext(ctx, NewOverdueSweepTask(), asynq.Queue(QueueDefault)); err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskOverdueSweep, err)
	}
	return nil
}

// Close libera el cliente.
func (c *Client) Close() error {
	return c.client.Close()
}
