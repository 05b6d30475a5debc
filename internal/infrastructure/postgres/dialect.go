package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Dialect PostgreSQL: identidad BIGSERIAL, NUMERIC(10,2) para dinero, READ COMMITTED.
func Dialect() persistence.Dialect {
	return persistence.Dialect{
		Name:           "postgres",
		IdentityColumn: "id BIGSERIAL PRIMARY KEY",
		ColumnType:     columnType,
		TxOptions:      &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Classify:       classify,
	}
}

func columnType(f entity.Field) string {
	switch f.Type {
	case entity.TypeText:
		if f.Max != nil {
			return fmt.Sprintf("VARCHAR(%d)", *f.Max)
		}
		return "TEXT"
	case entity.TypeEmail, entity.TypeEnum:
		return "VARCHAR(255)"
	case entity.TypeSecret:
		return "TEXT"
	case entity.TypeInt:
		return "INTEGER"
	case entity.TypeRef:
		return "BIGINT"
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

// classify distingue violaciones de unicidad (23505) y de llave foránea (23503).
func classify(err error) domain.ConstraintKind {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return domain.ConstraintOther
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return domain.ConstraintUnique
	case codeForeignKeyViolation:
		return domain.ConstraintForeignKey
	default:
		return domain.ConstraintOther
	}
}
