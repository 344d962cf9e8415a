package invoicing

import "github.com/elhamd/elhamd-api/internal/domain/entity"

// transitions estados destino permitidos por estado origen.
var transitions = map[string][]string{
	entity.InvoiceStatusDraft:         {entity.InvoiceStatusSent, entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusSent:          {entity.InvoiceStatusPaid, entity.InvoiceStatusPartiallyPaid, entity.InvoiceStatusOverdue, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusPartiallyPaid: {entity.InvoiceStatusPaid, entity.InvoiceStatusOverdue, entity.InvoiceStatusCancelled, entity.InvoiceStatusRefunded},
	entity.InvoiceStatusOverdue:       {entity.InvoiceStatusPaid, entity.InvoiceStatusPartiallyPaid, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusPaid:          {entity.InvoiceStatusRefunded},
	entity.InvoiceStatusCancelled:     {entity.InvoiceStatusDraft},
	entity.InvoiceStatusRefunded:      nil,
}

// IsValidStatus indica si s es un estado de factura conocido.
func IsValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition indica si la factura puede pasar de from a to.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive indica si el estado exige efectos de cumplimiento
// (stock descontado, vehículo reservado o vendido, asiento en el libro mayor).
func IsActive(status string) bool {
	switch status {
	case entity.InvoiceStatusSent, entity.InvoiceStatusPaid,
		entity.InvoiceStatusPartiallyPaid, entity.InvoiceStatusOverdue:
		return true
	}
	return false
}

// IsReleasing indica si entrar en el estado revierte los efectos de cumplimiento.
func IsReleasing(status string) bool {
	return status == entity.InvoiceStatusCancelled || status == entity.InvoiceStatusRefunded
}

// IsEditable indica si las líneas de la factura se pueden reemplazar.
func IsEditable(status string) bool {
	switch status {
	case entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled, entity.InvoiceStatusRefunded:
		return false
	}
	return true
}

// AcceptsPayments indica si la factura admite nuevos pagos.
func AcceptsPayments(status string) bool {
	switch status {
	case entity.InvoiceStatusCancelled, entity.InvoiceStatusRefunded:
		return false
	}
	return true
}
