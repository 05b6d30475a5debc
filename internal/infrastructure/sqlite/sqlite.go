// Package sqlite motor embebido (modernc.org/sqlite, Go puro) para desarrollo local y tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
)

// MemoryPath base de datos en memoria; limita el pool a una conexión.
const MemoryPath = ":memory:"

// Open abre (o crea) la base de datos con llaves foráneas activas y un pool de poolSize conexiones.
func Open(ctx context.Context, path string, poolSize int) (*sql.DB, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("sqlite: poolSize debe ser > 0")
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")

	dsn := "file:" + path + "?" + q.Encode()
	if path == MemoryPath {
		poolSize = 1
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Dialect SQLite: INTEGER PRIMARY KEY, tipos declarados que el driver reconoce al leer (DATE -> time.Time).
func Dialect() persistence.Dialect {
	return persistence.Dialect{
		Name:           "sqlite",
		IdentityColumn: "id INTEGER PRIMARY KEY AUTOINCREMENT",
		ColumnType:     columnType,
		Classify:       classify,
	}
}

func columnType(f entity.Field) string {
	switch f.Type {
	case entity.TypeInt, entity.TypeRef:
		return "INTEGER"
	case entity.TypeBool:
		return "BOOLEAN"
	case entity.TypeMoney:
		return "NUMERIC(10,2)"
	case entity.TypeDate:
		return "DATE"
	case entity.TypeTime:
		return "TIME"
	default:
		return "TEXT"
	}
}

func classify(err error) domain.ConstraintKind {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return domain.ConstraintOther
	}
	switch sqErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return domain.ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return domain.ConstraintForeignKey
	}
	// Sin códigos extendidos: se recurre al mensaje del motor.
	if sqErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := sqErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return domain.ConstraintUnique
		case strings.Contains(msg, "FOREIGN KEY"):
			return domain.ConstraintForeignKey
		}
	}
	return domain.ConstraintOther
}
