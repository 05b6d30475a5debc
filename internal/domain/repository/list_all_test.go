package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
)

type sliceLister struct {
	rows  []entity.Record
	calls int
	err   error
}

func (l *sliceLister) List(_ context.Context, _ entity.Kind, _ entity.Filters, offset, limit int) ([]entity.Record, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if offset >= len(l.rows) {
		return nil, nil
	}
	return l.rows[offset:min(offset+limit, len(l.rows))], nil
}

func rows(n int) []entity.Record {
	out := make([]entity.Record, n)
	for i := range out {
		out[i] = entity.Record{entity.ColID: int64(i + 1)}
	}
	return out
}

func TestListAll(t *testing.T) {
	tests := []struct {
		name  string
		total int
		calls int
	}{
		{"vacío", 0, 1},
		{"una página corta", 150, 1},
		{"página exacta", repository.ListPageSize, 2},
		{"varias páginas", 2*repository.ListPageSize + 7, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &sliceLister{rows: rows(tt.total)}
			got, err := repository.ListAll(context.Background(), l, entity.KindTransactionLine, nil)
			require.NoError(t, err)
			assert.Len(t, got, tt.total)
			assert.Equal(t, tt.calls, l.calls)
			if tt.total > 0 {
				assert.Equal(t, int64(tt.total), got[len(got)-1].ID())
			}
		})
	}
}

func TestListAll_PropagaError(t *testing.T) {
	boom := errors.New("boom")
	_, err := repository.ListAll(context.Background(), &sliceLister{err: boom}, entity.KindProduct, nil)
	assert.ErrorIs(t, err, boom)
}
