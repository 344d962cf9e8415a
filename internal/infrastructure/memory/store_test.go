package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

func TestInvoiceDelete_RestrictConPagos(t *testing.T) {
	s := New()
	ctx := context.Background()
	repos := s.Repositories()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"inv-1", "inv-2"} {
		require.NoError(t, repos.Invoices.Create(ctx, &entity.Invoice{
			ID: id, InvoiceNumber: "INV-" + id, Status: entity.InvoiceStatusSent,
			TotalAmount: decimal.NewFromInt(100), CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, repos.Payments.Create(ctx, &entity.Payment{
		ID: "pay-1", InvoiceID: "inv-1", Amount: decimal.NewFromInt(50),
		Status: entity.PaymentStatusCompleted, CreatedAt: now,
	}))
	s.PutTransaction(entity.Transaction{ReferenceID: entity.SaleReference("inv-2"), InvoiceID: "inv-2"})

	err := repos.Invoices.Delete(ctx, "inv-1")
	require.ErrorIs(t, err, domain.ErrPaidInvoiceDelete)
	got, err := repos.Invoices.GetByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	require.NoError(t, repos.Invoices.Delete(ctx, "inv-2"))
	got, err = repos.Invoices.GetByID(ctx, "inv-2")
	require.NoError(t, err)
	assert.Nil(t, got)
	// ON DELETE SET NULL
	require.Len(t, s.Transactions(), 1)
	assert.Empty(t, s.Transactions()[0].InvoiceID)

	assert.ErrorIs(t, repos.Invoices.Delete(ctx, "inv-2"), domain.ErrNotFound)
}
