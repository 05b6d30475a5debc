// Package analytics contiene los reportes de ventas y el dashboard del día y del mes.
package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermercado-api/internal/application/dto"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
)

const (
	dashboardTopProducts = 5 // productos en el widget del dashboard
	pageSize             = 1000
)

// Store lecturas que necesitan los reportes.
type Store interface {
	Get(ctx context.Context, kind entity.Kind, id int64) (entity.Record, error)
	List(ctx context.Context, kind entity.Kind, filters entity.Filters, offset, limit int) ([]entity.Record, error)
}

// DashboardUseCase reportes read-only sobre ventas confirmadas.
type DashboardUseCase struct {
	store Store
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(store Store) *DashboardUseCase {
	return &DashboardUseCase{store: store, now: time.Now}
}

// GetSummary construye el resumen de hoy y del mes en curso. Ambas consultas corren en paralelo.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, branchID *int64) (*dto.DashboardSummary, error) {
	now := uc.now()
	today := entity.DateOf(now)
	monthStart := entity.NewDate(now.Year(), now.Month(), 1)

	type result struct {
		summary *dto.SalesSummary
		err     error
	}
	todayCh := make(chan result, 1)
	monthCh := make(chan result, 1)

	go func() {
		s, err := uc.SalesSummary(ctx, today, today, branchID, dashboardTopProducts)
		todayCh <- result{s, err}
	}()
	go func() {
		s, err := uc.SalesSummary(ctx, monthStart, today, branchID, dashboardTopProducts)
		monthCh <- result{s, err}
	}()

	td := <-todayCh
	mo := <-monthCh
	if td.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", td.err)
	}
	if mo.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", mo.err)
	}
	return &dto.DashboardSummary{Today: td.summary, Month: mo.summary, DateLabel: monthLabel(now)}, nil
}

// SalesSummary agrega las ventas entre from y to (inclusive). El costo usa el costo actual del producto.
func (uc *DashboardUseCase) SalesSummary(ctx context.Context, from, to entity.Date, branchID *int64, top int) (*dto.SalesSummary, error) {
	if to.Before(from.Time) {
		return nil, &domain.ValidationError{Field: "end_date", Reason: "anterior a start_date"}
	}
	filters := entity.Filters{
		entity.ColDateOfTransaction + entity.SuffixGTE: from.String(),
		entity.ColDateOfTransaction + entity.SuffixLTE: to.String(),
	}
	if branchID != nil {
		filters[entity.ColBranchID] = *branchID
	}

	sum := &dto.SalesSummary{
		From:     from.String(),
		To:       to.String(),
		BranchID: branchID,
		Revenue:  decimal.Zero,
		Cost:     decimal.Zero,
	}
	byProduct := make(map[int64]*dto.TopProduct)
	costs := make(map[int64]decimal.Decimal)

	for offset := 0; ; offset += pageSize {
		sales, err := uc.store.List(ctx, entity.KindTransaction, filters, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		for _, s := range sales {
			sum.Transactions++
			lines, err := repository.ListAll(ctx, uc.store, entity.KindTransactionLine, entity.Filters{entity.ColTransactionID: s.ID()})
			if err != nil {
				return nil, fmt.Errorf("list lines of %d: %w", s.ID(), err)
			}
			for _, rec := range lines {
				line := entity.TransactionLineFromRecord(rec)
				p, ok := byProduct[line.ProductID]
				if !ok {
					name, cost, err := uc.product(ctx, line.ProductID)
					if err != nil {
						return nil, err
					}
					p = &dto.TopProduct{ProductID: line.ProductID, Name: name, Revenue: decimal.Zero}
					byProduct[line.ProductID] = p
					costs[line.ProductID] = cost
				}
				sub := line.Subtotal()
				p.Units += line.Quantity
				p.Revenue = p.Revenue.Add(sub)
				sum.Units += line.Quantity
				sum.Revenue = sum.Revenue.Add(sub)
				sum.Cost = sum.Cost.Add(costs[line.ProductID].Mul(decimal.NewFromInt(line.Quantity)))
			}
		}
		if len(sales) < pageSize {
			break
		}
	}

	sum.Revenue = sum.Revenue.Round(2)
	sum.Cost = sum.Cost.Round(2)
	sum.Margin = sum.Revenue.Sub(sum.Cost)
	sum.TopProducts = topProducts(byProduct, top)
	return sum, nil
}

func (uc *DashboardUseCase) product(ctx context.Context, id int64) (string, decimal.Decimal, error) {
	rec, err := uc.store.Get(ctx, entity.KindProduct, id)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("get product %d: %w", id, err)
	}
	p := entity.ProductFromRecord(rec)
	if p == nil {
		return fmt.Sprintf("Producto #%d", id), decimal.Zero, nil
	}
	return p.Name, p.Cost, nil
}

// topProducts ordena por ingreso descendente; empate por id.
func topProducts(byProduct map[int64]*dto.TopProduct, n int) []dto.TopProduct {
	out := make([]dto.TopProduct, 0, len(byProduct))
	for _, p := range byProduct {
		p.Revenue = p.Revenue.Round(2)
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b dto.TopProduct) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
