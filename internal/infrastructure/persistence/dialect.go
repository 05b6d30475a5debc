// Package persistence implementa el almacén genérico de entidades y la unidad de trabajo
// sobre database/sql. Los motores concretos (postgres, sqlite) aportan su Dialect.
package persistence

import (
	"database/sql"
	"fmt"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// Dialect diferencias entre motores: DDL, opciones de transacción y clasificación de errores.
type Dialect struct {
	Name string
	// IdentityColumn definición completa de la columna id.
	IdentityColumn string
	// ColumnType tipo SQL de una columna de la entidad.
	ColumnType func(f entity.Field) string
	// TxOptions opciones para BeginTx; nil = las del motor.
	TxOptions *sql.TxOptions
	// Classify traduce un error del driver a un tipo de restricción.
	Classify func(err error) domain.ConstraintKind
}

func (d Dialect) validate() error {
	if d.Name == "" || d.IdentityColumn == "" || d.ColumnType == nil || d.Classify == nil {
		return fmt.Errorf("persistence: dialect incompleto %q", d.Name)
	}
	return nil
}

// storageError envuelve un error del driver con su clasificación.
func (d Dialect) storageError(op string, err error) error {
	return &domain.StorageError{Kind: d.Classify(err), Op: op, Err: err}
}
