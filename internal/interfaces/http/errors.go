package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/application/dto"
	"github.com/jhoicas/supermercado-api/internal/application/sales"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// retryAfterSeconds sugerencia de reintento cuando el pool está agotado.
const retryAfterSeconds = 1

// writeError traduce errores de dominio a respuestas HTTP. Lo no clasificado es 500 opaco y se registra;
// un fallo de almacenamiento dentro del flujo de venta también es 500.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		vErrs domain.ValidationErrors
		vErr  *domain.ValidationError
		idErr *domain.InvalidIdentifierError
		stErr *domain.StorageError
		wfErr *sales.WorkflowError
	)
	switch {
	case errors.As(err, &vErrs):
		fields := make([]dto.FieldDetail, 0, len(vErrs))
		for _, e := range vErrs {
			fields = append(fields, dto.FieldDetail{Field: e.Field, Reason: e.Reason})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields})
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: vErr.Error(),
			Fields:  []dto.FieldDetail{{Field: vErr.Field, Reason: vErr.Reason}},
		})
	case errors.As(err, &idErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_IDENTIFIER", Message: idErr.Error()})
	case errors.Is(err, domain.ErrNothingToUpdate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "NOTHING_TO_UPDATE", Message: domain.ErrNothingToUpdate.Error()})
	case errors.Is(err, domain.ErrWorkflowOwned):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "WORKFLOW_OWNED", Message: domain.ErrWorkflowOwned.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: domain.ErrNotFound.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: domain.ErrEmailAlreadyExists.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: domain.ErrDuplicate.Error()})
	case errors.As(err, &stErr) && stErr.Kind == domain.ConstraintForeignKey && !errors.As(err, &wfErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REFERENCED", Message: "la fila está referenciada o referencia una fila inexistente"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: domain.ErrInvalidCredentials.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return unauthorized(c)
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: domain.ErrForbidden.Error()})
	case errors.Is(err, domain.ErrPoolExhausted):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BUSY", Message: domain.ErrPoolExhausted.Error()})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: domain.ErrUnauthorized.Error()})
}
