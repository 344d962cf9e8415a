package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
)

// prefijos del id de transacción por método
var prefixes = map[string]string{
	entity.PaymentMethodCash:         "CASH",
	entity.PaymentMethodCreditCard:   "CARD",
	entity.PaymentMethodBankTransfer: "BANK",
	entity.PaymentMethodCheck:        "CHECK",
}

// Simulated pasarela local: aprueba todo cobro válido y genera ids <PREFIJO>-<HEX>.
// Sirve para caja, transferencias registradas a mano y entornos sin proveedor externo.
type Simulated struct{}

// NewSimulated crea la pasarela simulada.
func NewSimulated() *Simulated { return &Simulated{} }

// Charge registra el cobro y devuelve el id de transacción.
func (s *Simulated) Charge(ctx context.Context, method string, amount decimal.Decimal, reference string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", domain.ErrInvalidAmount
	}
	return transactionID(method)
}

// Refund registra la devolución contra originalTransactionID.
func (s *Simulated) Refund(ctx context.Context, method, originalTransactionID string, amount decimal.Decimal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", domain.ErrInvalidAmount
	}
	id, err := transactionID(method)
	if err != nil {
		return "", err
	}
	return "RF-" + id, nil
}

func transactionID(method string) (string, error) {
	prefix, ok := prefixes[strings.ToUpper(method)]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMethod, method)
	}
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generar id de transacción: %w", err)
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
