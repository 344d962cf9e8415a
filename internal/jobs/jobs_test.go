package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/domain"
)

type fakeInvoices struct {
	marked     int
	markErr    error
	reconciled []string
	recErr     error
}

func (f *fakeInvoices) MarkOverdue(context.Context) (int, error) { return f.marked, f.markErr }

func (f *fakeInvoices) ReconcileLedger(_ context.Context, id string) error {
	f.reconciled = append(f.reconciled, id)
	return f.recErr
}

type fakeRecorder map[string]int

func (r fakeRecorder) ObserveJob(task, outcome string) { r[task+":"+outcome]++ }

func TestHandleOverdueSweep(t *testing.T) {
	inv := &fakeInvoices{marked: 3}
	rec := fakeRecorder{}
	h := NewHandlers(inv, inv, rec, zerolog.Nop())

	require.NoError(t, h.HandleOverdueSweep(context.Background(), NewOverdueSweepTask()))
	assert.Equal(t, 1, rec[TaskOverdueSweep+":ok"])

	inv.markErr = errors.New("db caída")
	assert.Error(t, h.HandleOverdueSweep(context.Background(), NewOverdueSweepTask()))
	assert.Equal(t, 1, rec[TaskOverdueSweep+":error"])
}

func TestHandleReconcile(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		inv := &fakeInvoices{}
		rec := fakeRecorder{}
		h := NewHandlers(inv, inv, rec, zerolog.Nop())
		task, err := NewReconcileTask("INV-1")
		require.NoError(t, err)

		require.NoError(t, h.HandleReconcile(context.Background(), task))
		assert.Equal(t, []string{"INV-1"}, inv.reconciled)
		assert.Equal(t, 1, rec[TaskLedgerReconcile+":ok"])
	})

	t.Run("payload inválido no reintenta", func(t *testing.T) {
		inv := &fakeInvoices{}
		h := NewHandlers(inv, inv, nil, zerolog.Nop())
		err := h.HandleReconcile(context.Background(), asynq.NewTask(TaskLedgerReconcile, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, inv.reconciled)
	})

	t.Run("factura inexistente no reintenta", func(t *testing.T) {
		inv := &fakeInvoices{recErr: domain.ErrNotFound}
		h := NewHandlers(inv, inv, nil, zerolog.Nop())
		task, _ := NewReconcileTask("INV-X")
		err := h.HandleReconcile(context.Background(), task)
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("error transitorio reintenta", func(t *testing.T) {
		inv := &fakeInvoices{recErr: errors.New("timeout")}
		h := NewHandlers(inv, inv, nil, zerolog.Nop())
		task, _ := NewReconcileTask("INV-2")
		err := h.HandleReconcile(context.Background(), task)
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestNewReconcileTask_SinID(t *testing.T) {
	_, err := NewReconcileTask("")
	assert.Error(t, err)
}

func TestClient_ScheduleReconcileDeduplica(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.ScheduleReconcile(ctx, "INV-1"))
	require.NoError(t, c.ScheduleReconcile(ctx, "INV-1"))
	require.NoError(t, c.ScheduleReconcile(ctx, "INV-2"))

	pending, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestTaskHandlers(t *testing.T) {
	inv := &fakeInvoices{}
	h := NewHandlers(inv, inv, nil, zerolog.Nop())
	types := map[string]bool{}
	for _, th := range h.TaskHandlers() {
		types[th.Type] = th.Handler != nil
	}
	assert.Equal(t, map[string]bool{TaskOverdueSweep: true, TaskLedgerReconcile: true}, types)
}
