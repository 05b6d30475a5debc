// Package validation reúne las dos compuertas previas a cualquier escritura:
// la guarda de identificadores (nombres de tabla y columna) y el validador de esquema por entidad.
package validation

import (
	"maps"
	"slices"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// ValidateIdentifier acepta solo identificadores simples: no vacíos y con [A-Za-z0-9_].
func ValidateIdentifier(name string) error {
	if name == "" {
		return &domain.InvalidIdentifierError{Identifier: name}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return &domain.InvalidIdentifierError{Identifier: name}
		}
	}
	return nil
}

// ValidateColumn exige que name sea un identificador simple y una columna de la entidad (id incluido).
func ValidateColumn(kind entity.Kind, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if name == entity.ColID {
		return nil
	}
	if _, ok := kind.Schema().Field(name); !ok {
		return &domain.InvalidIdentifierError{Identifier: name}
	}
	return nil
}

// ValidateColumns aplica ValidateColumn a todas las claves del mapa.
func ValidateColumns[V any](kind entity.Kind, fields map[string]V) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if err := ValidateColumn(kind, name); err != nil {
			return err
		}
	}
	return nil
}
