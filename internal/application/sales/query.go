package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
)

// QueryUseCase lecturas de ventas: cabecera con líneas, listados filtrados y comprobante PDF.
type QueryUseCase struct {
	store     Store
	generator ReceiptGenerator
}

// NewQueryUseCase construye el caso de uso. generator puede ser nil si no se exponen comprobantes.
func NewQueryUseCase(store Store, generator ReceiptGenerator) *QueryUseCase {
	return &QueryUseCase{store: store, generator: generator}
}

// Get cabecera más líneas; domain.ErrNotFound si no existe.
func (uc *QueryUseCase) Get(ctx context.Context, id int64) (*entity.TransactionWithLines, error) {
	sale, err := loadSale(ctx, uc.store, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// ListLines líneas de una venta en orden de inserción. Vacío si la venta no tiene líneas o no existe.
func (uc *QueryUseCase) ListLines(ctx context.Context, id int64) ([]entity.TransactionLine, error) {
	recs, err := repository.ListAll(ctx, uc.store, entity.KindTransactionLine, entity.Filters{entity.ColTransactionID: id})
	if err != nil {
		return nil, fmt.Errorf("list lines of %d: %w", id, err)
	}
	out := make([]entity.TransactionLine, 0, len(recs))
	for _, r := range recs {
		out = append(out, entity.TransactionLineFromRecord(r))
	}
	return out, nil
}

// List cabeceras filtradas (branch_id, customer_id, date_of_transaction__gte/__lte, ...).
func (uc *QueryUseCase) List(ctx context.Context, filters entity.Filters, offset, limit int) ([]*entity.Transaction, error) {
	recs, err := uc.store.List(ctx, entity.KindTransaction, filters, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Transaction, 0, len(recs))
	for _, r := range recs {
		out = append(out, entity.TransactionFromRecord(r))
	}
	return out, nil
}

// Receipt genera el comprobante PDF de una venta. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *QueryUseCase) Receipt(ctx context.Context, id int64) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("receipt: %w", domain.ErrNotFound)
	}
	sale, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var customer *entity.Customer
	if sale.CustomerID != nil {
		rec, err := uc.store.Get(ctx, entity.KindCustomer, *sale.CustomerID)
		if err != nil {
			return nil, "", fmt.Errorf("receipt: get customer: %w", err)
		}
		customer = entity.CustomerFromRecord(rec)
	}
	var branch *entity.Branch
	if sale.BranchID != nil {
		rec, err := uc.store.Get(ctx, entity.KindBranch, *sale.BranchID)
		if err != nil {
			return nil, "", fmt.Errorf("receipt: get branch: %w", err)
		}
		branch = entity.BranchFromRecord(rec)
	}

	lines := make([]ReceiptLine, 0, len(sale.Details))
	names := make(map[int64]string)
	for _, d := range sale.Details {
		name, ok := names[d.ProductID]
		if !ok {
			rec, err := uc.store.Get(ctx, entity.KindProduct, d.ProductID)
			if err != nil {
				return nil, "", fmt.Errorf("receipt: get product: %w", err)
			}
			name = fmt.Sprintf("Producto #%d", d.ProductID)
			if p := entity.ProductFromRecord(rec); p != nil {
				name = p.Name
			}
			names[d.ProductID] = name
		}
		lines = append(lines, ReceiptLine{
			ProductName: name,
			Quantity:    d.Quantity,
			Price:       d.Price,
			Subtotal:    d.Subtotal(),
		})
	}

	pdf, err := uc.generator.GenerateReceiptPDF(ctx, sale, customer, branch, lines)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: %w", err)
	}
	return pdf, fmt.Sprintf("venta-%d.pdf", sale.ID), nil
}
