package invoicing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, invoicing.CanTransition(entity.InvoiceStatusDraft, entity.InvoiceStatusSent))
	assert.True(t, invoicing.CanTransition(entity.InvoiceStatusSent, entity.InvoiceStatusPaid))
	assert.True(t, invoicing.CanTransition(entity.InvoiceStatusPaid, entity.InvoiceStatusRefunded))
	assert.True(t, invoicing.CanTransition(entity.InvoiceStatusCancelled, entity.InvoiceStatusDraft))

	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusPaid, entity.InvoiceStatusDraft))
	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled))
	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusRefunded, entity.InvoiceStatusPaid))
	assert.False(t, invoicing.CanTransition("UNKNOWN", entity.InvoiceStatusSent))
}

func TestIsActive(t *testing.T) {
	for _, s := range []string{entity.InvoiceStatusSent, entity.InvoiceStatusPaid, entity.InvoiceStatusPartiallyPaid, entity.InvoiceStatusOverdue} {
		assert.True(t, invoicing.IsActive(s), s)
	}
	for _, s := range []string{entity.InvoiceStatusDraft, entity.InvoiceStatusCancelled, entity.InvoiceStatusRefunded} {
		assert.False(t, invoicing.IsActive(s), s)
	}
}
