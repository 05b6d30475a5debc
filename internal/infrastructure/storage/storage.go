// Package storage abre el motor configurado (PostgreSQL o SQLite) y entrega el runner transaccional.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/supermercado-api/internal/infrastructure/persistence"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/supermercado-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/supermercado-api/pkg/config"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// Storage conexión abierta más su dialecto. Close libera todo lo abierto por Open.
type Storage struct {
	DB      *sql.DB
	Dialect persistence.Dialect
	closers []func()
}

// Open conecta según cfg.Driver.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		db := postgres.OpenDB(pool, cfg.PoolSize)
		return &Storage{
			DB:      db,
			Dialect: postgres.Dialect(),
			closers: []func(){func() { _ = db.Close() }, pool.Close},
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.PoolSize)
		if err != nil {
			return nil, err
		}
		return &Storage{
			DB:      db,
			Dialect: sqlite.Dialect(),
			closers: []func(){func() { _ = db.Close() }},
		}, nil
	default:
		return nil, fmt.Errorf("driver desconocido %q", cfg.Driver)
	}
}

// Runner construye el TxRunner sobre la conexión abierta.
func (s *Storage) Runner(cfg config.DBConfig, log *logger.Logger, rec persistence.Recorder) *persistence.TxRunner {
	return persistence.NewTxRunner(s.DB, s.Dialect, cfg.AcquireTimeout, log, rec)
}

// Close cierra en orden de apertura.
func (s *Storage) Close() {
	for _, c := range s.closers {
		c()
	}
}
