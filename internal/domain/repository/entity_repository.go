package repository

import (
	"context"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// EntityRepository almacén genérico por entidad (puerto). Ausencia no es error: Get/Update devuelven nil, nil.
type EntityRepository interface {
	Create(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error)
	// CreateInTx crea dentro de la unidad de trabajo de ctx; admite entidades del flujo de ventas.
	CreateInTx(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error)
	Get(ctx context.Context, kind entity.Kind, id int64) (entity.Record, error)
	List(ctx context.Context, kind entity.Kind, filters entity.Filters, offset, limit int) ([]entity.Record, error)
	Update(ctx context.Context, kind entity.Kind, id int64, patch entity.Fields) (entity.Record, error)
	Delete(ctx context.Context, kind entity.Kind, id int64) (bool, error)
	FindByEmail(ctx context.Context, kind entity.Kind, email string) (entity.Record, error)
}

// StockAdjuster descuenta inventario con piso en cero.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, productID, quantity int64) (bool, error)
}
