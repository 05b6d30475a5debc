package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

// Store lo que el flujo de ventas necesita del almacén genérico.
type Store interface {
	CreateInTx(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error)
	Get(ctx context.Context, kind entity.Kind, id int64) (entity.Record, error)
	List(ctx context.Context, kind entity.Kind, filters entity.Filters, offset, limit int) ([]entity.Record, error)
	DecrementStock(ctx context.Context, productID, quantity int64) (bool, error)
}

// Observer recibe el resultado de cada venta (métricas).
type Observer interface {
	SaleCommitted(amount decimal.Decimal)
	SaleFailed(phase string)
}

type nopObserver struct{}

func (nopObserver) SaleCommitted(decimal.Decimal) {}
func (nopObserver) SaleFailed(string)             {}

// ReceiptLine línea del comprobante ya resuelta con el nombre del producto.
type ReceiptLine struct {
	ProductName string
	Quantity    int64
	Price       decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptGenerator genera el comprobante de venta en PDF. customer y branch pueden ser nil.
type ReceiptGenerator interface {
	GenerateReceiptPDF(
		ctx context.Context,
		sale *entity.TransactionWithLines,
		customer *entity.Customer,
		branch *entity.Branch,
		lines []ReceiptLine,
	) ([]byte, error)
}
