package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/storage"
	"github.com/jhoicas/supermercado-api/pkg/config"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{
		Driver:         config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "s.db"),
		PoolSize:       2,
		AcquireTimeout: time.Second,
	}
	st, err := storage.Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, "sqlite", st.Dialect.Name)
	runner := st.Runner(cfg, logger.Nop(), nil)
	require.NoError(t, persistence.Migrate(ctx, runner))

	store := persistence.NewEntityStore(runner)
	id, err := store.Create(ctx, entity.KindBranch, entity.Fields{"name": "Centro", "location": "Cali", "size": 120, "total_stock": 0})
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := storage.Open(context.Background(), config.DBConfig{Driver: "mysql"}, logger.Nop())
	assert.Error(t, err)
}
