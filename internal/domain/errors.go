package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Pagos y reembolsos.
	ErrInvalidAmount        = errors.New("el monto debe ser mayor que cero")
	ErrExceedsTotal         = errors.New("el monto excede el total de la factura")
	ErrUnsupportedMethod    = errors.New("método de pago no soportado")
	ErrPaymentNotRefundable = errors.New("el pago no se puede reembolsar")
	ErrRefundExceedsPayment = errors.New("el reembolso excede el monto del pago")
	ErrInvoiceNotPayable    = errors.New("la factura no admite pagos en su estado actual")
	ErrInvoiceLocked        = errors.New("la factura está siendo procesada por otra operación")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
	ErrInvoiceNotEditable   = errors.New("la factura no se puede modificar en su estado actual")
	ErrPaidInvoiceDelete    = errors.New("no se puede eliminar una factura con pagos")
	ErrVehicleUnavailable   = errors.New("el vehículo ya fue vendido")
	ErrTotalBelowPaidAmount = errors.New("el nuevo total es menor que lo ya pagado")
)

// Códigos de error expuestos por la API.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeForbidden  = "FORBIDDEN"
	CodeUnauth     = "UNAUTHORIZED"
	CodeInternal   = "INTERNAL_ERROR"
)

// Code clasifica un error en la taxonomía NOT_FOUND / VALIDATION_ERROR / CONFLICT /
// FORBIDDEN / UNAUTHORIZED / INTERNAL_ERROR.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrExceedsTotal),
		errors.Is(err, ErrUnsupportedMethod),
		errors.Is(err, ErrRefundExceedsPayment),
		errors.Is(err, ErrTotalBelowPaidAmount):
		return CodeValidation
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrPaymentNotRefundable),
		errors.Is(err, ErrInvoiceNotPayable),
		errors.Is(err, ErrInvoiceLocked),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvoiceNotEditable),
		errors.Is(err, ErrPaidInvoiceDelete),
		errors.Is(err, ErrVehicleUnavailable):
		return CodeConflict
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauth
	default:
		return CodeInternal
	}
}
