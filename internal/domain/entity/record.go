package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fields mapa de campos sin tipar tal como llega del llamador.
type Fields map[string]any

// Record fila normalizada: valores canónicos (int64, string, bool, decimal.Decimal, Date, TimeOfDay, nil).
type Record map[string]any

// ID devuelve la identidad asignada por el almacenamiento (0 si no tiene).
func (r Record) ID() int64 {
	id, _ := r[ColID].(int64)
	return id
}

// String valor de texto de una columna.
func (r Record) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Int valor entero de una columna.
func (r Record) Int(col string) int64 {
	n, _ := r[col].(int64)
	return n
}

// IntPtr valor entero anulable.
func (r Record) IntPtr(col string) *int64 {
	n, ok := r[col].(int64)
	if !ok {
		return nil
	}
	return &n
}

// Bool valor booleano de una columna.
func (r Record) Bool(col string) bool {
	b, _ := r[col].(bool)
	return b
}

// Money valor monetario de una columna.
func (r Record) Money(col string) decimal.Decimal {
	d, _ := r[col].(decimal.Decimal)
	return d
}

// Date valor de fecha de una columna.
func (r Record) Date(col string) Date {
	d, _ := r[col].(Date)
	return d
}

// DatePtr fecha anulable.
func (r Record) DatePtr(col string) *Date {
	d, ok := r[col].(Date)
	if !ok {
		return nil
	}
	return &d
}

// Clone copia superficial.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Redacted copia sin columnas de credenciales, para respuestas.
func (r Record) Redacted() Record {
	out := r.Clone()
	delete(out, ColPassword)
	return out
}

// Filters criterios de listado: columna, columna__gte o columna__lte -> valor.
type Filters map[string]any

// Sufijos de comparación por rango.
const (
	SuffixGTE = "__gte"
	SuffixLTE = "__lte"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Date fecha de calendario sin hora ni zona.
type Date struct {
	time.Time
}

// NewDate construye una fecha (UTC, medianoche).
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf trunca t a su fecha de calendario.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate acepta YYYY-MM-DD o RFC3339 (se descarta la hora).
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("fecha inválida %q", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay hora del día con resolución de segundos.
type TimeOfDay struct {
	Hour, Minute, Second int
}

// TimeOf toma la hora del día de t.
func TimeOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseTimeOfDay acepta HH:MM, HH:MM:SS y HH:MM:SS.ffffff.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{timeLayout, "15:04", "15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOf(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("hora inválida %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
