package entity

import "time"

// Metadata mapa libre de auditoría (JSONB en la base de datos).
// Se usa en facturas, líneas de factura y asientos del libro mayor.
type Metadata map[string]any

// Clone devuelve una copia superficial; nunca devuelve nil.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge devuelve una copia de m con las claves de patch sobrescritas.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := m.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// String devuelve el valor como string ("" si falta o no es string).
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Bool devuelve el valor como bool (false si falta o no es bool).
func (m Metadata) Bool(key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

// Timestamp formato usado para las marcas de tiempo guardadas en metadata.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
