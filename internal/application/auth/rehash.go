package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/password"
)

const rehashPageSize = 100

// MigratePlaintextPasswords convierte a argon2id las contraseñas guardadas en claro (datos heredados).
// Devuelve cuántas filas se actualizaron; las que fallan se reportan juntas al final.
func (uc *UseCase) MigratePlaintextPasswords(ctx context.Context) (int, error) {
	migrated := 0
	var errs []error
	for _, kind := range entity.Kinds() {
		if !kind.Schema().HasSecret() {
			continue
		}
		for offset := 0; ; offset += rehashPageSize {
			recs, err := uc.store.List(ctx, kind, nil, offset, rehashPageSize)
			if err != nil {
				return migrated, fmt.Errorf("list %s: %w", kind.Table(), err)
			}
			for _, rec := range recs {
				stored := rec.String(entity.ColPassword)
				if stored == "" || password.IsHash(stored) {
					continue
				}
				// El almacén hashea el valor antes de escribirlo.
				if _, err := uc.store.Update(ctx, kind, rec.ID(), entity.Fields{entity.ColPassword: stored}); err != nil {
					errs = append(errs, fmt.Errorf("rehash %s %d: %w", kind.Table(), rec.ID(), err))
					continue
				}
				migrated++
				uc.log.Info().Str("table", kind.Table()).Int64("id", rec.ID()).Msg("contraseña migrada a argon2id")
			}
			if len(recs) < rehashPageSize {
				break
			}
		}
	}
	return migrated, errors.Join(errs...)
}
