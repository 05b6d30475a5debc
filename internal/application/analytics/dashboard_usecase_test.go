package analytics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/internal/application/analytics"
	"github.com/jhoicas/supermercado-api/internal/application/sales"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

type fixture struct {
	store  *persistence.EntityStore
	create *sales.CreateTransactionUseCase
	uc     *analytics.DashboardUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "analytics.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runner := persistence.NewTxRunner(db, sqlite.Dialect(), time.Second, logger.Nop(), nil)
	require.NoError(t, persistence.Migrate(ctx, runner))
	store := persistence.NewEntityStore(runner)
	return &fixture{
		store:  store,
		create: sales.NewCreateTransactionUseCase(runner, store, nil, logger.Nop()),
		uc:     analytics.NewDashboardUseCase(store),
	}
}

func (f *fixture) product(t *testing.T, name, price, cost string) int64 {
	t.Helper()
	id, err := f.store.Create(context.Background(), entity.KindProduct, entity.Fields{
		"name": name, "stock": 100, "sell_price": price, "cost": cost, "category_id": "C1", "category": "Varios",
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) branch(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.store.Create(context.Background(), entity.KindBranch, entity.Fields{
		"name": name, "location": "Cali", "size": 100, "total_stock": 0,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) sell(t *testing.T, branchID int64, date, total string, lines ...entity.Fields) {
	t.Helper()
	_, err := f.create.Execute(context.Background(), entity.Fields{
		"branch_id":           branchID,
		"date_of_transaction": date,
		"time_of_transaction": "09:30",
		"total_amount":        total,
	}, lines)
	require.NoError(t, err)
}

func line(productID int64, qty int, price string) entity.Fields {
	return entity.Fields{"product_id": productID, "quantity": qty, "price": price}
}

func TestSalesSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	norte, sur := f.branch(t, "Norte"), f.branch(t, "Sur")
	leche := f.product(t, "Leche", "4.00", "3.00")
	pan := f.product(t, "Pan", "2.50", "1.00")

	f.sell(t, norte, "2024-05-01", "13.00", line(leche, 2, "4.00"), line(pan, 2, "2.50"))
	f.sell(t, sur, "2024-05-15", "12.00", line(leche, 3, "4.00"))
	f.sell(t, norte, "2024-06-01", "2.50", line(pan, 1, "2.50"))

	sum, err := f.uc.SalesSummary(ctx, entity.NewDate(2024, time.May, 1), entity.NewDate(2024, time.May, 31), nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Transactions)
	assert.EqualValues(t, 7, sum.Units)
	assert.Equal(t, "25", sum.Revenue.String())
	assert.Equal(t, "17", sum.Cost.String())
	assert.Equal(t, "8", sum.Margin.String())
	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "Leche", sum.TopProducts[0].Name)
	assert.Equal(t, "20", sum.TopProducts[0].Revenue.String())

	sum, err = f.uc.SalesSummary(ctx, entity.NewDate(2024, time.May, 1), entity.NewDate(2024, time.June, 30), &norte, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Transactions)
	require.Len(t, sum.TopProducts, 1)
	assert.Equal(t, "Leche", sum.TopProducts[0].Name)
	assert.Equal(t, "8", sum.TopProducts[0].Revenue.String())

	sum, err = f.uc.SalesSummary(ctx, entity.NewDate(2023, time.January, 1), entity.NewDate(2023, time.December, 31), nil, 5)
	require.NoError(t, err)
	assert.Zero(t, sum.Transactions)
	assert.True(t, sum.Revenue.IsZero())
	assert.Empty(t, sum.TopProducts)
}

func TestSalesSummary_RangoInvertido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.SalesSummary(context.Background(), entity.NewDate(2024, time.June, 1), entity.NewDate(2024, time.May, 1), nil, 5)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGetSummary_HoyYMes(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Centro")
	p := f.product(t, "Queso", "10.00", "6.00")
	f.sell(t, b, entity.DateOf(time.Now()).String(), "10.00", line(p, 1, "10.00"))

	out, err := f.uc.GetSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Today.Transactions)
	assert.Equal(t, 1, out.Month.Transactions)
	assert.Equal(t, "4", out.Today.Margin.String())
	assert.NotEmpty(t, out.DateLabel)
}
