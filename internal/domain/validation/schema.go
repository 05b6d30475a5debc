package validation

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

var (
	structValidator = validator.New()
	// NUMERIC(10,2): ocho dígitos enteros.
	maxMoney = decimal.New(1, 8)
)

// Validate es la única entrada de validación de esquema: se usa al crear y, tras fusionar, al actualizar.
// Devuelve el registro con valores canónicos. Las claves deben ser columnas de la entidad; id no es escribible.
func Validate(kind entity.Kind, fields entity.Fields) (entity.Record, error) {
	return validate(kind, fields, nil)
}

// ValidateDraft valida un registro al que todavía le faltan columnas que se asignan después
// (la referencia a la cabecera en las líneas de venta). Las columnas pending pueden faltar.
func ValidateDraft(kind entity.Kind, fields entity.Fields, pending ...string) (entity.Record, error) {
	return validate(kind, fields, pending)
}

func validate(kind entity.Kind, fields entity.Fields, pending []string) (entity.Record, error) {
	if !kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Reason: "entidad desconocida"}
	}
	if err := checkKeys(kind, fields); err != nil {
		return nil, err
	}
	schema := kind.Schema()
	out := make(entity.Record, len(fields))
	var errs domain.ValidationErrors
	for _, f := range schema.Fields {
		raw, present := fields[f.Name]
		if !present || raw == nil {
			if f.Required && (present || !slices.Contains(pending, f.Name)) {
				errs = append(errs, &domain.ValidationError{Field: f.Name, Reason: "campo requerido"})
			} else if present {
				out[f.Name] = nil
			}
			continue
		}
		v, err := coerce(f, raw)
		if err == nil {
			err = checkRange(f, v)
		}
		if err != nil {
			errs = append(errs, &domain.ValidationError{Field: f.Name, Reason: err.Error()})
			continue
		}
		out[f.Name] = v
	}
	switch len(errs) {
	case 0:
		return out, nil
	case 1:
		return nil, errs[0]
	default:
		return nil, errs
	}
}

// Merge aplica patch sobre existing y devuelve el registro completo sin id, listo para Validate.
func Merge(existing entity.Record, patch entity.Fields) entity.Fields {
	merged := make(entity.Fields, len(existing)+len(patch))
	for k, v := range existing {
		if k == entity.ColID {
			continue
		}
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// CheckPatch valida los nombres de una actualización parcial y las columnas inmutables
// respecto de los valores ya guardados.
func CheckPatch(kind entity.Kind, existing entity.Record, patch entity.Fields) error {
	if err := checkKeys(kind, patch); err != nil {
		return err
	}
	schema := kind.Schema()
	for _, name := range slices.Sorted(maps.Keys(patch)) {
		f, _ := schema.Field(name)
		if !f.Immutable {
			continue
		}
		next, err := coerce(f, patch[name])
		if err != nil {
			return &domain.ValidationError{Field: name, Reason: err.Error()}
		}
		if !sameValue(existing[name], next) {
			return &domain.ValidationError{Field: name, Reason: "no se puede modificar una vez asignado"}
		}
	}
	return nil
}

// Decode normaliza una fila leída del almacenamiento: mismos tipos canónicos que Validate, sin rangos.
func Decode(kind entity.Kind, row map[string]any) (entity.Record, error) {
	schema := kind.Schema()
	out := make(entity.Record, len(row))
	for name, raw := range row {
		if name == entity.ColID {
			id, err := toInt(raw)
			if err != nil {
				return nil, fmt.Errorf("decode %s.id: %w", schema.Table, err)
			}
			out[name] = id
			continue
		}
		f, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("decode %s: columna inesperada %q", schema.Table, name)
		}
		if raw == nil {
			out[name] = nil
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", schema.Table, name, err)
		}
		out[name] = v
	}
	return out, nil
}

// CoerceFilter convierte el valor de un filtro de listado al tipo de su columna.
func CoerceFilter(kind entity.Kind, column string, raw any) (any, error) {
	if column == entity.ColID {
		return toInt(raw)
	}
	f, ok := kind.Schema().Field(column)
	if !ok {
		return nil, &domain.InvalidIdentifierError{Identifier: column}
	}
	if raw == nil {
		return nil, nil
	}
	v, err := coerce(f, raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: column, Reason: err.Error()}
	}
	return v, nil
}

func checkKeys(kind entity.Kind, fields entity.Fields) error {
	if err := ValidateColumns(kind, fields); err != nil {
		return err
	}
	if _, ok := fields[entity.ColID]; ok {
		return &domain.ValidationError{Field: entity.ColID, Reason: "la identidad la asigna el almacenamiento"}
	}
	return nil
}

func coerce(f entity.Field, raw any) (any, error) {
	switch f.Type {
	case entity.TypeText, entity.TypeEmail, entity.TypeEnum, entity.TypeSecret:
		return toString(raw)
	case entity.TypeInt, entity.TypeRef:
		return toInt(raw)
	case entity.TypeBool:
		return toBool(raw)
	case entity.TypeMoney:
		return toMoney(raw)
	case entity.TypeDate:
		return toDate(raw)
	case entity.TypeTime:
		return toTimeOfDay(raw)
	default:
		return nil, fmt.Errorf("tipo no soportado")
	}
}

func checkRange(f entity.Field, v any) error {
	switch f.Type {
	case entity.TypeText, entity.TypeSecret:
		n := int64(utf8.RuneCountInString(v.(string)))
		if f.Min != nil && n < *f.Min {
			return fmt.Errorf("longitud mínima %d", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Errorf("longitud máxima %d", *f.Max)
		}
	case entity.TypeEmail:
		if err := structValidator.Var(v, "required,email"); err != nil {
			return fmt.Errorf("email inválido")
		}
	case entity.TypeEnum:
		if !slices.Contains(f.Enum, v.(string)) {
			return fmt.Errorf("debe ser uno de %s", strings.Join(f.Enum, ", "))
		}
	case entity.TypeInt, entity.TypeRef:
		n := v.(int64)
		if f.Min != nil && n < *f.Min {
			return fmt.Errorf("debe ser >= %d", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Errorf("debe ser <= %d", *f.Max)
		}
	case entity.TypeMoney:
		d := v.(decimal.Decimal)
		if !d.Equal(d.Truncate(2)) {
			return fmt.Errorf("máximo 2 decimales")
		}
		if f.Min != nil && d.LessThan(decimal.NewFromInt(*f.Min)) {
			return fmt.Errorf("debe ser >= %d", *f.Min)
		}
		if d.Abs().GreaterThanOrEqual(maxMoney) {
			return fmt.Errorf("monto fuera de rango")
		}
	}
	return nil
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("se esperaba texto")
	}
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("se esperaba un entero")
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("se esperaba un entero")
		}
		return n, nil
	case []byte:
		return toInt(string(v))
	default:
		return 0, fmt.Errorf("se esperaba un entero")
	}
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("se esperaba booleano")
		}
		return b, nil
	default:
		return false, fmt.Errorf("se esperaba booleano")
	}
}

func toMoney(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return decimal.Zero, fmt.Errorf("se esperaba un monto")
		}
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("se esperaba un monto")
		}
		return d, nil
	case []byte:
		return toMoney(string(v))
	default:
		return decimal.Zero, fmt.Errorf("se esperaba un monto")
	}
}

func toDate(raw any) (entity.Date, error) {
	switch v := raw.(type) {
	case entity.Date:
		return v, nil
	case time.Time:
		return entity.DateOf(v), nil
	case string:
		return entity.ParseDate(strings.TrimSpace(v))
	case []byte:
		return entity.ParseDate(string(v))
	default:
		return entity.Date{}, fmt.Errorf("se esperaba una fecha YYYY-MM-DD")
	}
}

func toTimeOfDay(raw any) (entity.TimeOfDay, error) {
	switch v := raw.(type) {
	case entity.TimeOfDay:
		return v, nil
	case time.Time:
		return entity.TimeOf(v), nil
	case string:
		return entity.ParseTimeOfDay(strings.TrimSpace(v))
	case []byte:
		return entity.ParseTimeOfDay(string(v))
	default:
		return entity.TimeOfDay{}, fmt.Errorf("se esperaba una hora HH:MM:SS")
	}
}

func sameValue(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	return a == b
}
