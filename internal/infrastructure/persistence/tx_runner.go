package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// Outcomes de una unidad de trabajo para métricas.
const (
	OutcomeCommit    = "commit"
	OutcomeRollback  = "rollback"
	OutcomeExhausted = "pool_exhausted"
)

// Recorder recibe observaciones del almacenamiento. Lo implementa el paquete metrics.
type Recorder interface {
	ObserveStatement(table, op string, elapsed time.Duration, err error)
	ObserveUnitOfWork(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStatement(string, string, time.Duration, error) {}
func (nopRecorder) ObserveUnitOfWork(string, time.Duration)               {}

type txKey struct{}

// unit transacción activa compartida por las llamadas anidadas.
type unit struct {
	tx *sql.Tx
}

// TxRunner ejecuta callbacks dentro de una transacción sobre una única conexión del pool.
type TxRunner struct {
	db             *sql.DB
	dialect        Dialect
	acquireTimeout time.Duration
	log            *logger.Logger
	rec            Recorder
}

// NewTxRunner construye el runner. acquireTimeout acota la espera por una conexión libre.
func NewTxRunner(db *sql.DB, dialect Dialect, acquireTimeout time.Duration, log *logger.Logger, rec Recorder) *TxRunner {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{db: db, dialect: dialect, acquireTimeout: acquireTimeout, log: log, rec: rec}
}

// Run adquiere una conexión (espera acotada), inicia una transacción, ejecuta fn y hace Commit o Rollback.
// Si ctx ya lleva una unidad de trabajo, fn se une a ella y el Commit lo decide la llamada externa.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InUnitOfWork(ctx) {
		return fn(ctx)
	}
	start := time.Now()

	conn, err := r.acquire(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPoolExhausted) {
			r.rec.ObserveUnitOfWork(OutcomeExhausted, time.Since(start))
		}
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, r.dialect.TxOptions)
	if err != nil {
		return r.dialect.storageError("begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.Error().Err(rbErr).Msg("rollback de la unidad de trabajo")
		}
		r.rec.ObserveUnitOfWork(OutcomeRollback, time.Since(start))
	}()

	if err := fn(context.WithValue(ctx, txKey{}, &unit{tx: tx})); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", r.dialect.storageError("commit", err))
	}
	committed = true
	r.rec.ObserveUnitOfWork(OutcomeCommit, time.Since(start))
	return nil
}

// InUnitOfWork indica si ctx lleva una transacción activa.
func InUnitOfWork(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*unit)
	return ok
}

func txFrom(ctx context.Context) (*sql.Tx, error) {
	u, ok := ctx.Value(txKey{}).(*unit)
	if !ok {
		return nil, domain.ErrNoUnitOfWork
	}
	return u.tx, nil
}

func (r *TxRunner) acquire(ctx context.Context) (*sql.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	defer cancel()
	conn, err := r.db.Conn(actx)
	if err == nil {
		return conn, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		r.log.Warn().Dur("timeout", r.acquireTimeout).Msg("pool de conexiones agotado")
		return nil, fmt.Errorf("acquire connection: %w", domain.ErrPoolExhausted)
	}
	return nil, r.dialect.storageError("acquire connection", err)
}
