package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
	"github.com/jhoicas/supermercado-api/internal/domain/validation"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// Fases del flujo de venta.
const (
	PhaseValidate = "validate"
	PhaseBegin    = "begin"
	PhaseHeader   = "header"
	PhaseLines    = "lines"
	PhaseStock    = "stock"
	PhaseCommit   = "commit"
)

// WorkflowError fallo de una venta: todo lo ejecutado se revirtió. Phase indica dónde falló.
type WorkflowError struct {
	Phase string
	Err   error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("transaction workflow failed at %s: %v", e.Phase, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// CreateTransactionUseCase registra una venta: cabecera, líneas y descuento de stock en una sola transacción.
type CreateTransactionUseCase struct {
	txRunner repository.TxRunner
	store    Store
	observer Observer
	log      *logger.Logger
}

// NewCreateTransactionUseCase construye el caso de uso. observer puede ser nil.
func NewCreateTransactionUseCase(txRunner repository.TxRunner, store Store, observer Observer, log *logger.Logger) *CreateTransactionUseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateTransactionUseCase{
		txRunner: txRunner,
		store:    store,
		observer: observer,
		log:      log.Component("sales"),
	}
}

// Execute valida todo antes de tocar el almacenamiento y luego ejecuta, en orden, la inserción de la
// cabecera, la de cada línea con el id de la cabecera y el descuento de stock (piso en cero).
// Cualquier fallo revierte todo y se devuelve como un único *WorkflowError.
// Tras el Commit relee la venta confirmada.
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, header entity.Fields, lines []entity.Fields) (*entity.TransactionWithLines, error) {
	runID := uuid.NewString()
	log := uc.log.Zerolog().With().Str("run_id", runID).Logger()

	hdr, drafts, err := prepare(header, lines)
	if err != nil {
		uc.observer.SaleFailed(PhaseValidate)
		log.Debug().Err(err).Msg("venta rechazada en validación")
		return nil, err
	}

	phase := PhaseBegin
	var txID int64
	err = uc.txRunner.Run(ctx, func(ctx context.Context) error {
		phase = PhaseHeader
		id, err := uc.store.CreateInTx(ctx, entity.KindTransaction, entity.Fields(hdr))
		if err != nil {
			return err
		}
		txID = id
		log.Debug().Int64("transaction_id", id).Msg("cabecera insertada")

		phase = PhaseLines
		for i, line := range drafts {
			line[entity.ColTransactionID] = id
			if _, err := uc.store.CreateInTx(ctx, entity.KindTransactionLine, entity.Fields(line)); err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
		}
		log.Debug().Int("lines", len(drafts)).Msg("líneas insertadas")

		phase = PhaseStock
		for i, line := range drafts {
			qty, ok := line[entity.ColQuantity].(int64)
			if !ok || qty <= 0 {
				continue
			}
			productID := line.Int(entity.ColProductID)
			found, err := uc.store.DecrementStock(ctx, productID, qty)
			if err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
			if !found {
				log.Warn().Int64("product_id", productID).Msg("producto sin fila al descontar stock")
			}
		}
		phase = PhaseCommit
		return nil
	})
	if err != nil {
		uc.observer.SaleFailed(phase)
		log.Error().Err(err).Str("phase", phase).Msg("venta revertida")
		return nil, &WorkflowError{Phase: phase, Err: err}
	}

	total := hdr.Money(entity.ColTotalAmount)
	uc.observer.SaleCommitted(total)
	log.Info().Int64("transaction_id", txID).Str("total_amount", total.StringFixed(2)).Msg("venta confirmada")

	sale, err := loadSale(ctx, uc.store, txID)
	if err != nil {
		return nil, fmt.Errorf("reload transaction %d: %w", txID, err)
	}
	if sale == nil {
		return nil, fmt.Errorf("reload transaction %d: %w", txID, domain.ErrNotFound)
	}
	return sale, nil
}

// prepare valida cabecera y líneas y comprueba que el total coincida con la suma de las líneas.
func prepare(header entity.Fields, lines []entity.Fields) (entity.Record, []entity.Record, error) {
	if len(lines) == 0 {
		return nil, nil, &domain.ValidationError{Field: "lines", Reason: "la venta debe tener al menos una línea"}
	}
	hdr, err := validation.Validate(entity.KindTransaction, header)
	if err != nil {
		return nil, nil, err
	}

	drafts := make([]entity.Record, 0, len(lines))
	sum := decimal.Zero
	for i, line := range lines {
		if _, ok := line[entity.ColTransactionID]; ok {
			return nil, nil, &domain.ValidationError{
				Field:  fmt.Sprintf("lines[%d].%s", i, entity.ColTransactionID),
				Reason: "lo asigna el flujo de venta",
			}
		}
		rec, err := validation.ValidateDraft(entity.KindTransactionLine, line, entity.ColTransactionID)
		if err != nil {
			return nil, nil, prefixLine(i, err)
		}
		sum = sum.Add(rec.Money(entity.ColPrice).Mul(decimal.NewFromInt(rec.Int(entity.ColQuantity))))
		drafts = append(drafts, rec)
	}

	if total := hdr.Money(entity.ColTotalAmount); !total.Equal(sum) {
		return nil, nil, &domain.ValidationError{
			Field:  entity.ColTotalAmount,
			Reason: fmt.Sprintf("%s no coincide con la suma de las líneas (%s)", total.StringFixed(2), sum.StringFixed(2)),
		}
	}
	return hdr, drafts, nil
}

// prefixLine agrega el índice de línea al campo de los errores de validación.
func prefixLine(i int, err error) error {
	var vErrs domain.ValidationErrors
	if errors.As(err, &vErrs) {
		out := make(domain.ValidationErrors, 0, len(vErrs))
		for _, e := range vErrs {
			out = append(out, &domain.ValidationError{Field: fmt.Sprintf("lines[%d].%s", i, e.Field), Reason: e.Reason})
		}
		return out
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return &domain.ValidationError{Field: fmt.Sprintf("lines[%d].%s", i, vErr.Field), Reason: vErr.Reason}
	}
	return err
}

// loadSale lee la cabecera y sus líneas; nil, nil si la cabecera no existe.
func loadSale(ctx context.Context, store Store, id int64) (*entity.TransactionWithLines, error) {
	rec, err := store.Get(ctx, entity.KindTransaction, id)
	if err != nil || rec == nil {
		return nil, err
	}
	lineRecs, err := repository.ListAll(ctx, store, entity.KindTransactionLine, entity.Filters{entity.ColTransactionID: id})
	if err != nil {
		return nil, err
	}
	sale := &entity.TransactionWithLines{
		Transaction: *entity.TransactionFromRecord(rec),
		Details:     make([]entity.TransactionLine, 0, len(lineRecs)),
	}
	for _, l := range lineRecs {
		sale.Details = append(sale.Details, entity.TransactionLineFromRecord(l))
	}
	return sale, nil
}
