package persistence

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// bindValue convierte un valor canónico a un tipo que ambos drivers aceptan como parámetro.
// Dinero, fechas y horas viajan como texto; el motor los convierte al tipo de la columna.
func bindValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.StringFixed(2)
	case entity.Date:
		return x.String()
	case entity.TimeOfDay:
		return x.String()
	default:
		return v
	}
}

func bindValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = bindValue(v)
	}
	return out
}
