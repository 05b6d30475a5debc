package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// SchemaStatements genera el DDL de todas las entidades, referenciadas primero.
func SchemaStatements(d Dialect) ([]string, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	var stmts []string
	for _, kind := range entity.Kinds() {
		stmt, err := createTableSQL(d, kind)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	for _, kind := range entity.Kinds() {
		for _, f := range kind.Schema().Fields {
			if f.Type != entity.TypeRef {
				continue
			}
			table, err := ident(kind.Table())
			if err != nil {
				return nil, err
			}
			col, err := ident(f.Name)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", table, col, table, col))
		}
	}
	return stmts, nil
}

func createTableSQL(d Dialect, kind entity.Kind) (string, error) {
	table, err := ident(kind.Table())
	if err != nil {
		return "", err
	}
	defs := []string{d.IdentityColumn}
	for _, f := range kind.Schema().Fields {
		col, err := ident(f.Name)
		if err != nil {
			return "", err
		}
		def := col + " " + d.ColumnType(f)
		if f.Required {
			def += " NOT NULL"
		}
		if f.Type == entity.TypeEmail {
			def += " UNIQUE"
		}
		if f.Type == entity.TypeRef {
			ref, err := ident(f.Ref.Table())
			if err != nil {
				return "", err
			}
			def += fmt.Sprintf(" REFERENCES %s (id)", ref)
			switch {
			case f.Owner:
				def += " ON DELETE CASCADE"
			case f.Nullable:
				def += " ON DELETE SET NULL"
			}
		}
		switch f.Type {
		case entity.TypeInt, entity.TypeMoney:
			if f.Min != nil {
				def += fmt.Sprintf(" CHECK (%s >= %d)", col, *f.Min)
			}
			if f.Max != nil {
				def += fmt.Sprintf(" CHECK (%s <= %d)", col, *f.Max)
			}
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t")), nil
}

// Migrate aplica el DDL dentro de una unidad de trabajo. Es idempotente.
func Migrate(ctx context.Context, runner *TxRunner) error {
	stmts, err := SchemaStatements(runner.dialect)
	if err != nil {
		return err
	}
	err = runner.Run(ctx, func(ctx context.Context) error {
		tx, err := txFrom(ctx)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return runner.dialect.storageError("migrate", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	runner.log.Info().Str("dialect", runner.dialect.Name).Int("statements", len(stmts)).Msg("esquema aplicado")
	return nil
}
