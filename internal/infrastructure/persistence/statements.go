package persistence

import (
	"fmt"
	"strings"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/validation"
)

// Plantillas cerradas. Solo se sustituyen identificadores que pasan la guarda y marcadores $n;
// los valores viajan siempre como parámetros.

// comparison operadores admitidos en listados.
type comparison string

const (
	cmpEQ  comparison = "="
	cmpGTE comparison = ">="
	cmpLTE comparison = "<="
)

type predicate struct {
	column string
	op     comparison
	value  any
}

// ident valida el identificador justo antes de interpolarlo.
func ident(name string) (string, error) {
	if err := validation.ValidateIdentifier(name); err != nil {
		return "", err
	}
	return name, nil
}

func identList(names []string) (string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		id, err := ident(n)
		if err != nil {
			return "", err
		}
		out = append(out, id)
	}
	return strings.Join(out, ", "), nil
}

func selectColumns(kind entity.Kind) []string {
	return append([]string{entity.ColID}, kind.Schema().Columns()...)
}

func insertSQL(kind entity.Kind, columns []string) (string, error) {
	table, err := ident(kind.Table())
	if err != nil {
		return "", err
	}
	cols, err := identList(columns)
	if err != nil {
		return "", err
	}
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", table, cols, strings.Join(marks, ", ")), nil
}

func selectByIDSQL(kind entity.Kind) (string, error) {
	table, err := ident(kind.Table())
	if err != nil {
		return "", err
	}
	cols, err := identList(selectColumns(kind))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", cols, table), nil
}

func selectListSQL(kind entity.Kind, preds []predicate, offset, limit int) (string, []any, error) {
	table, err := ident(kind.Table())
	if err != nil {
		return "", nil, err
	}
	cols, err := identList(selectColumns(kind))
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, table)
	args := make([]any, 0, len(preds)+2)
	for i, p := range preds {
		col, err := ident(p.column)
		if err != nil {
			return "", nil, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		if p.value == nil && p.op == cmpEQ {
			fmt.Fprintf(&b, "%s IS NULL", col)
			continue
		}
		args = append(args, p.value)
		fmt.Fprintf(&b, "%s %s $%d", col, p.op, len(args))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, " ORDER BY id LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args, nil
}

func updateSQL(kind entity.Kind, columns []string) (string, error) {
	table, err := ident(kind.Table())
	if err != nil {
		return "", err
	}
	sets := make([]string, 0, len(columns))
	for i, c := range columns {
		col, err := ident(c)
		if err != nil {
			return "", err
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(columns)+1), nil
}

func deleteSQL(kind entity.Kind) (string, error) {
	table, err := ident(kind.Table())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), nil
}

// decrementStockSQL descuenta con piso en cero: max(0, stock - q).
func decrementStockSQL() (string, error) {
	table, err := ident(entity.KindProduct.Table())
	if err != nil {
		return "", err
	}
	stock, err := ident(entity.ColStock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("UPDATE %s SET %s = CASE WHEN %s > $1 THEN %s - $1 ELSE 0 END WHERE id = $2",
		table, stock, stock, stock), nil
}
