package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
	"github.com/jhoicas/supermercado-api/internal/domain/validation"
	"github.com/jhoicas/supermercado-api/pkg/logger"
	"github.com/jhoicas/supermercado-api/pkg/password"
)

var (
	_ repository.EntityRepository = (*EntityStore)(nil)
	_ repository.StockAdjuster    = (*EntityStore)(nil)
)

// Límites de listado.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// EntityStore CRUD genérico por entidad. Cada operación corre en una unidad de trabajo
// (propia, o la de ctx si existe).
type EntityStore struct {
	tx      *TxRunner
	dialect Dialect
	log     *logger.Logger
	rec     Recorder
	hash    func(string) (string, error)
}

// NewEntityStore construye el almacén sobre el runner.
func NewEntityStore(tx *TxRunner) *EntityStore {
	return &EntityStore{
		tx:      tx,
		dialect: tx.dialect,
		log:     tx.log.Component("entity_store"),
		rec:     tx.rec,
		hash:    password.Hash,
	}
}

// Create valida, hashea credenciales e inserta. Las entidades del flujo de ventas se rechazan.
func (s *EntityStore) Create(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	if kind.Schema().WorkflowOwned {
		return 0, fmt.Errorf("create %s: %w", kind, domain.ErrWorkflowOwned)
	}
	var id int64
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.insert(ctx, kind, fields)
		return err
	})
	return id, err
}

// CreateInTx inserta dentro de la unidad de trabajo de ctx.
func (s *EntityStore) CreateInTx(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	if !InUnitOfWork(ctx) {
		return 0, fmt.Errorf("create %s: %w", kind, domain.ErrNoUnitOfWork)
	}
	return s.insert(ctx, kind, fields)
}

// Get lectura puntual; nil, nil si no existe.
func (s *EntityStore) Get(ctx context.Context, kind entity.Kind, id int64) (entity.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var out entity.Record
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.get(ctx, kind, id)
		return err
	})
	return out, err
}

// List filtra con conjunción de igualdades y rangos (col__gte, col__lte), ordenado por id.
func (s *EntityStore) List(ctx context.Context, kind entity.Kind, filters entity.Filters, offset, limit int) ([]entity.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	preds, err := buildPredicates(kind, filters)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	query, args, err := selectListSQL(kind, preds, offset, limit)
	if err != nil {
		return nil, err
	}
	var out []entity.Record
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.query(ctx, kind, "list", query, args...)
		return err
	})
	return out, err
}

// Update fusiona el parche con la fila existente, revalida el registro completo y escribe solo
// las columnas suministradas. nil, nil si el id no existe.
func (s *EntityStore) Update(ctx context.Context, kind entity.Kind, id int64, patch entity.Fields) (entity.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, domain.ErrNothingToUpdate
	}
	if kind.Schema().InsertOnly {
		return nil, fmt.Errorf("update %s: %w", kind, domain.ErrWorkflowOwned)
	}
	if err := validation.ValidateColumns(kind, patch); err != nil {
		return nil, err
	}
	var out entity.Record
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		existing, err := s.get(ctx, kind, id)
		if err != nil || existing == nil {
			return err
		}
		if err := validation.CheckPatch(kind, existing, patch); err != nil {
			return err
		}
		merged, err := validation.Validate(kind, validation.Merge(existing, patch))
		if err != nil {
			return err
		}
		columns := patchColumns(kind, patch)
		if err := s.hashSecrets(kind, merged, columns); err != nil {
			return err
		}
		values := make([]any, 0, len(columns)+1)
		for _, c := range columns {
			values = append(values, merged[c])
		}
		values = append(values, id)

		query, err := updateSQL(kind, columns)
		if err != nil {
			return err
		}
		if _, err := s.exec(ctx, kind, "update", query, bindValues(values)...); err != nil {
			return err
		}
		s.log.Info().Str("table", kind.Table()).Int64("id", id).Strs("columns", columns).Msg("registro actualizado")
		out, err = s.get(ctx, kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra por id. false si no existía; nunca es error por ausencia.
func (s *EntityStore) Delete(ctx context.Context, kind entity.Kind, id int64) (bool, error) {
	if err := checkKind(kind); err != nil {
		return false, err
	}
	if kind.Schema().InsertOnly {
		return false, fmt.Errorf("delete %s: %w", kind, domain.ErrWorkflowOwned)
	}
	query, err := deleteSQL(kind)
	if err != nil {
		return false, err
	}
	var deleted bool
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		n, err := s.exec(ctx, kind, "delete", query, id)
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("table", kind.Table()).Int64("id", id).Msg("registro eliminado")
	}
	return deleted, nil
}

// FindByEmail busca por email en la tabla de la entidad; nil, nil si no existe.
func (s *EntityStore) FindByEmail(ctx context.Context, kind entity.Kind, email string) (entity.Record, error) {
	recs, err := s.List(ctx, kind, entity.Filters{entity.ColEmail: email}, 0, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// DecrementStock resta quantity del stock del producto con piso en cero. false si el producto no existe.
func (s *EntityStore) DecrementStock(ctx context.Context, productID, quantity int64) (bool, error) {
	query, err := decrementStockSQL()
	if err != nil {
		return false, err
	}
	var found bool
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		n, err := s.exec(ctx, entity.KindProduct, "decrement_stock", query, quantity, productID)
		found = n > 0
		return err
	})
	return found, err
}

func (s *EntityStore) insert(ctx context.Context, kind entity.Kind, fields entity.Fields) (int64, error) {
	rec, err := validation.Validate(kind, fields)
	if err != nil {
		return 0, err
	}
	columns := make([]string, 0, len(rec))
	for _, c := range kind.Schema().Columns() {
		if _, ok := rec[c]; ok {
			columns = append(columns, c)
		}
	}
	if err := s.hashSecrets(kind, rec, columns); err != nil {
		return 0, err
	}
	values := make([]any, 0, len(columns))
	for _, c := range columns {
		values = append(values, rec[c])
	}
	query, err := insertSQL(kind, columns)
	if err != nil {
		return 0, err
	}
	tx, err := txFrom(ctx)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var id int64
	err = tx.QueryRowContext(ctx, query, bindValues(values)...).Scan(&id)
	s.rec.ObserveStatement(kind.Table(), "insert", time.Since(start), err)
	if err != nil {
		return 0, s.dialect.storageError("insert "+kind.Table(), err)
	}
	s.log.Info().Str("table", kind.Table()).Int64("id", id).Msg("registro creado")
	return id, nil
}

func (s *EntityStore) get(ctx context.Context, kind entity.Kind, id int64) (entity.Record, error) {
	query, err := selectByIDSQL(kind)
	if err != nil {
		return nil, err
	}
	recs, err := s.query(ctx, kind, "get", query, id)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func (s *EntityStore) query(ctx context.Context, kind entity.Kind, op, query string, args ...any) ([]entity.Record, error) {
	tx, err := txFrom(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		s.rec.ObserveStatement(kind.Table(), op, time.Since(start), err)
		return nil, s.dialect.storageError(op+" "+kind.Table(), err)
	}
	defer rows.Close()

	recs, err := scanRecords(kind, rows)
	s.rec.ObserveStatement(kind.Table(), op, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, kind.Table(), err)
	}
	return recs, nil
}

func (s *EntityStore) exec(ctx context.Context, kind entity.Kind, op, query string, args ...any) (int64, error) {
	tx, err := txFrom(ctx)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	res, err := tx.ExecContext(ctx, query, args...)
	s.rec.ObserveStatement(kind.Table(), op, time.Since(start), err)
	if err != nil {
		return 0, s.dialect.storageError(op+" "+kind.Table(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s %s rows affected: %w", op, kind.Table(), err)
	}
	return n, nil
}

// hashSecrets reemplaza por su hash las credenciales incluidas en columns.
func (s *EntityStore) hashSecrets(kind entity.Kind, rec entity.Record, columns []string) error {
	schema := kind.Schema()
	for _, c := range columns {
		f, _ := schema.Field(c)
		if f.Type != entity.TypeSecret {
			continue
		}
		plain, ok := rec[c].(string)
		if !ok {
			continue
		}
		hashed, err := s.hash(plain)
		if err != nil {
			return fmt.Errorf("hash %s: %w", c, err)
		}
		rec[c] = hashed
	}
	return nil
}

func scanRecords(kind entity.Kind, rows *sql.Rows) ([]entity.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []entity.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[strings.ToLower(c)] = vals[i]
		}
		rec, err := validation.Decode(kind, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// buildPredicates traduce los filtros a predicados; las claves pasan por la guarda antes de usarse.
func buildPredicates(kind entity.Kind, filters entity.Filters) ([]predicate, error) {
	preds := make([]predicate, 0, len(filters))
	for _, key := range slices.Sorted(maps.Keys(filters)) {
		column, op := key, cmpEQ
		switch {
		case strings.HasSuffix(key, entity.SuffixGTE):
			column, op = strings.TrimSuffix(key, entity.SuffixGTE), cmpGTE
		case strings.HasSuffix(key, entity.SuffixLTE):
			column, op = strings.TrimSuffix(key, entity.SuffixLTE), cmpLTE
		}
		if err := validation.ValidateColumn(kind, column); err != nil {
			return nil, err
		}
		if f, ok := kind.Schema().Field(column); ok && f.Type == entity.TypeSecret {
			return nil, &domain.ValidationError{Field: key, Reason: "no se puede filtrar por credenciales"}
		}
		value, err := validation.CoerceFilter(kind, column, filters[key])
		if err != nil {
			return nil, err
		}
		if value == nil && op != cmpEQ {
			return nil, &domain.ValidationError{Field: key, Reason: "el rango requiere un valor"}
		}
		preds = append(preds, predicate{column: column, op: op, value: bindValue(value)})
	}
	return preds, nil
}

// patchColumns columnas del parche en orden de declaración.
func patchColumns(kind entity.Kind, patch entity.Fields) []string {
	out := make([]string, 0, len(patch))
	for _, c := range kind.Schema().Columns() {
		if _, ok := patch[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func checkKind(kind entity.Kind) error {
	if !kind.Valid() {
		return &domain.ValidationError{Field: "kind", Reason: "entidad desconocida"}
	}
	return nil
}
