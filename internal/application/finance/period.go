package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/elhamd/elhamd-api/internal/domain"
)

// Periodos admitidos por el resumen financiero.
const (
	PeriodDay     = "day"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodCustom  = "custom"
)

// Window rango [From, To) de un reporte.
type Window struct {
	Period string
	From   time.Time
	To     time.Time
}

// Previous ventana de igual duración que termina donde empieza w.
func (w Window) Previous() Window {
	return Window{Period: w.Period, From: w.From.Add(-w.To.Sub(w.From)), To: w.From}
}

// ResolveWindow arma la ventana del reporte. Con from/to (2006-01-02, to inclusivo) el
// periodo es custom; si no, es una ventana móvil que termina en now (por defecto un mes).
func ResolveWindow(now time.Time, period, from, to string) (Window, error) {
	now = now.UTC()
	if from != "" || to != "" {
		return customWindow(now, from, to)
	}

	w := Window{Period: strings.ToLower(strings.TrimSpace(period)), To: now}
	switch w.Period {
	case PeriodDay:
		w.From = now.AddDate(0, 0, -1)
	case PeriodWeek:
		w.From = now.AddDate(0, 0, -7)
	case "", PeriodMonth:
		w.Period = PeriodMonth
		w.From = now.AddDate(0, -1, 0)
	case PeriodQuarter:
		w.From = now.AddDate(0, -3, 0)
	case PeriodYear:
		w.From = now.AddDate(-1, 0, 0)
	default:
		return Window{}, fmt.Errorf("%w: periodo %q", domain.ErrInvalidInput, period)
	}
	return w, nil
}

func customWindow(now time.Time, fromStr, toStr string) (Window, error) {
	w := Window{Period: PeriodCustom}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if toStr == "" {
		w.To = today.AddDate(0, 0, 1)
	} else {
		to, err := time.ParseInLocation(time.DateOnly, toStr, time.UTC)
		if err != nil {
			return Window{}, fmt.Errorf("%w: to inválido", domain.ErrInvalidInput)
		}
		w.To = to.AddDate(0, 0, 1) // inclusivo hasta el final del día
	}

	if fromStr == "" {
		// primer día del mes de to
		last := w.To.AddDate(0, 0, -1)
		w.From = time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		from, err := time.ParseInLocation(time.DateOnly, fromStr, time.UTC)
		if err != nil {
			return Window{}, fmt.Errorf("%w: from inválido", domain.ErrInvalidInput)
		}
		w.From = from
	}

	if !w.From.Before(w.To) {
		return Window{}, fmt.Errorf("%w: from no puede ser posterior a to", domain.ErrInvalidInput)
	}
	return w, nil
}

// monthStart primer instante del mes de t (UTC).
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
