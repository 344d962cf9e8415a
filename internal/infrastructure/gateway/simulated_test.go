package gateway

import (
	"context"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/domain"
)

func TestSimulated_ChargePrefijoPorMetodo(t *testing.T) {
	gw := NewSimulated()
	cases := map[string]string{
		"CASH":          `^CASH-[0-9A-F]{12}$`,
		"CREDIT_CARD":   `^CARD-[0-9A-F]{12}$`,
		"BANK_TRANSFER": `^BANK-[0-9A-F]{12}$`,
		"check":         `^CHECK-[0-9A-F]{12}$`,
	}
	for method, pattern := range cases {
		id, err := gw.Charge(context.Background(), method, decimal.NewFromInt(10), "INV-1")
		require.NoError(t, err, method)
		assert.Regexp(t, regexp.MustCompile(pattern), id)
	}
}

func TestSimulated_MetodoNoSoportado(t *testing.T) {
	_, err := NewSimulated().Charge(context.Background(), "CRYPTO", decimal.NewFromInt(10), "INV-1")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMethod)
}

func TestSimulated_Refund(t *testing.T) {
	gw := NewSimulated()
	id, err := gw.Refund(context.Background(), "CASH", "CASH-ABC", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Regexp(t, `^RF-CASH-[0-9A-F]{12}$`, id)

	_, err = gw.Refund(context.Background(), "CASH", "CASH-ABC", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
