package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("acceso denegado")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrWorkflowOwned      = errors.New("la entidad solo se crea desde el flujo de ventas")
	ErrPoolExhausted      = errors.New("no hay conexiones disponibles, reintente")
	ErrNoUnitOfWork       = errors.New("se requiere una transacción activa")
)

// ValidationError entrada rechazada por las reglas de esquema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ValidationErrors agrupa varios fallos de un mismo registro.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(es))
	for _, e := range es {
		out = append(out, e)
	}
	return out
}

// InvalidIdentifierError nombre de tabla o columna que no es un identificador simple.
type InvalidIdentifierError struct {
	Identifier string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.Identifier)
}

func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrInvalidInput }

// ConstraintKind clasifica los fallos del motor de base de datos.
type ConstraintKind int

const (
	ConstraintOther ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign_key"
	default:
		return "other"
	}
}

// StorageError fallo del almacenamiento (restricción, conexión, motor).
type StorageError struct {
	Kind ConstraintKind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is hace que una violación de unicidad sea ErrDuplicate.
func (e *StorageError) Is(target error) bool {
	return target == ErrDuplicate && e.Kind == ConstraintUnique
}
