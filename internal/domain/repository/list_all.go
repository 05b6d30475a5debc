package repository

import (
	"context"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// ListPageSize filas por página en ListAll; coincide con el tope del almacén.
const ListPageSize = 1000

// Lister lectura paginada del almacén.
type Lister interface {
	List(ctx context.Context, kind entity.Kind, filters entity.Filters, offset, limit int) ([]entity.Record, error)
}

// ListAll lee todas las filas que cumplen filters, página por página, hasta recibir una página corta.
func ListAll(ctx context.Context, l Lister, kind entity.Kind, filters entity.Filters) ([]entity.Record, error) {
	var out []entity.Record
	for offset := 0; ; offset += ListPageSize {
		page, err := l.List(ctx, kind, filters, offset, ListPageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < ListPageSize {
			return out, nil
		}
	}
}
