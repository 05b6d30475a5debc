// Package catalog expone el CRUD genérico por entidad hacia la capa HTTP. Las respuestas nunca llevan credenciales.
package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
)

// UseCase casos de uso CRUD sobre el almacén genérico.
type UseCase struct {
	repo repository.EntityRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.EntityRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Create crea la fila y devuelve el registro tal como quedó guardado.
func (uc *UseCase) Create(ctx context.Context, kind entity.Kind, fields entity.Fields) (entity.Record, error) {
	id, err := uc.repo.Create(ctx, kind, fields)
	if err != nil {
		return nil, err
	}
	rec, err := uc.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("reload %s %d: %w", kind, id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("reload %s %d: %w", kind, id, domain.ErrNotFound)
	}
	return rec.Redacted(), nil
}

// Get obtiene por id; domain.ErrNotFound si no existe.
func (uc *UseCase) Get(ctx context.Context, kind entity.Kind, id int64) (entity.Record, error) {
	rec, err := uc.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.Redacted(), nil
}

// List listado filtrado; nunca nil.
func (uc *UseCase) List(ctx context.Context, kind entity.Kind, filters entity.Filters, skip, limit int) ([]entity.Record, error) {
	recs, err := uc.repo.List(ctx, kind, filters, skip, limit)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Redacted())
	}
	return out, nil
}

// Update aplica un parche parcial; domain.ErrNotFound si no existe.
func (uc *UseCase) Update(ctx context.Context, kind entity.Kind, id int64, patch entity.Fields) (entity.Record, error) {
	rec, err := uc.repo.Update(ctx, kind, id, patch)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.Redacted(), nil
}

// Delete borra por id; domain.ErrNotFound si no existía.
func (uc *UseCase) Delete(ctx context.Context, kind entity.Kind, id int64) error {
	deleted, err := uc.repo.Delete(ctx, kind, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveEmployees empleados sin fecha de fin de contrato, con filtros adicionales opcionales.
func (uc *UseCase) ListActiveEmployees(ctx context.Context, filters entity.Filters, skip, limit int) ([]entity.Record, error) {
	active := make(entity.Filters, len(filters)+1)
	for k, v := range filters {
		active[k] = v
	}
	active[entity.ColDateOfEndOfEmployment] = nil
	return uc.List(ctx, entity.KindEmployee, active, skip, limit)
}
