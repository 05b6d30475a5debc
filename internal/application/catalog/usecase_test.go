package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

func newUseCase(t *testing.T) *catalog.UseCase {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runner := persistence.NewTxRunner(db, sqlite.Dialect(), time.Second, logger.Nop(), nil)
	require.NoError(t, persistence.Migrate(ctx, runner))
	return catalog.NewUseCase(persistence.NewEntityStore(runner))
}

func customer(email string) entity.Fields {
	return entity.Fields{
		"name":       "Ana",
		"age":        31,
		"email":      email,
		"membership": false,
		"password":   "Secreta1",
	}
}

func TestCreate_OcultaCredenciales(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	rec, err := uc.Create(ctx, entity.KindCustomer, customer("ana@example.com"))
	require.NoError(t, err)
	assert.Positive(t, rec.ID())
	assert.NotContains(t, rec, entity.ColPassword)

	got, err := uc.Get(ctx, entity.KindCustomer, rec.ID())
	require.NoError(t, err)
	assert.NotContains(t, got, entity.ColPassword)
	assert.Equal(t, "ana@example.com", got.String(entity.ColEmail))

	list, err := uc.List(ctx, entity.KindCustomer, nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], entity.ColPassword)
}

func TestNoEncontrado(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Get(ctx, entity.KindBranch, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Update(ctx, entity.KindBranch, 99, entity.Fields{"name": "Sur"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, uc.Delete(ctx, entity.KindBranch, 99), domain.ErrNotFound)
}

func TestList_VacioNoEsNil(t *testing.T) {
	uc := newUseCase(t)
	list, err := uc.List(context.Background(), entity.KindProduct, nil, 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdateYDelete(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	rec, err := uc.Create(ctx, entity.KindBranch, entity.Fields{
		"name": "Centro", "location": "Cali", "size": 200, "total_stock": 0,
	})
	require.NoError(t, err)

	upd, err := uc.Update(ctx, entity.KindBranch, rec.ID(), entity.Fields{"location": "Pasto"})
	require.NoError(t, err)
	assert.Equal(t, "Pasto", upd.String("location"))
	assert.Equal(t, "Centro", upd.String("name"))

	require.NoError(t, uc.Delete(ctx, entity.KindBranch, rec.ID()))
	assert.ErrorIs(t, uc.Delete(ctx, entity.KindBranch, rec.ID()), domain.ErrNotFound)
}

func TestCreate_FlujoDeVentasRechazado(t *testing.T) {
	uc := newUseCase(t)
	_, err := uc.Create(context.Background(), entity.KindTransaction, entity.Fields{
		"date_of_transaction": "2024-05-01",
		"time_of_transaction": "10:00",
		"total_amount":        "1.00",
	})
	assert.ErrorIs(t, err, domain.ErrWorkflowOwned)
}

func TestListActiveEmployees(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	employee := func(email string, end any) entity.Fields {
		return entity.Fields{
			"name": "Emp", "age": 30, "date_of_employment": "2021-03-01", "date_of_end_of_employment": end,
			"email": email, "role": entity.RoleCashier, "password": "Secreta1",
		}
	}
	_, err := uc.Create(ctx, entity.KindEmployee, employee("activo@example.com", nil))
	require.NoError(t, err)
	_, err = uc.Create(ctx, entity.KindEmployee, employee("baja@example.com", "2023-06-30"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, entity.KindEmployee, employee("otro@example.com", nil))
	require.NoError(t, err)

	active, err := uc.ListActiveEmployees(ctx, nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "activo@example.com", active[0].String(entity.ColEmail))
	assert.Equal(t, "otro@example.com", active[1].String(entity.ColEmail))

	filtered, err := uc.ListActiveEmployees(ctx, entity.Filters{entity.ColEmail: "otro@example.com"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
}
