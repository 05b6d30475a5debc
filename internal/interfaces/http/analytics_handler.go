package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/application/analytics"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

const defaultTopProducts = 10

// AnalyticsHandler reportes de ventas.
type AnalyticsHandler struct {
	uc  *analytics.DashboardUseCase
	log *logger.Logger
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.DashboardUseCase, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc, log: log}
}

// Dashboard godoc
// @Summary      Ventas de hoy y del mes
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id  query  int  false  "sucursal"
// @Success      200  {object}  dto.DashboardSummary
// @Router       /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	branchID, err := optionalID(c, "branch_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.GetSummary(c.UserContext(), branchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Sales godoc
// @Summary      Resumen de ventas por rango
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query  string  true   "desde (YYYY-MM-DD)"
// @Param        end_date    query  string  true   "hasta (YYYY-MM-DD)"
// @Param        branch_id   query  int     false  "sucursal"
// @Param        top         query  int     false  "productos a listar"
// @Success      200  {object}  dto.SalesSummary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/analytics/sales [get]
func (h *AnalyticsHandler) Sales(c *fiber.Ctx) error {
	from, err := entity.ParseDate(c.Query(queryStartDate))
	if err != nil {
		return writeError(c, h.log, &domain.ValidationError{Field: queryStartDate, Reason: err.Error()})
	}
	to, err := entity.ParseDate(c.Query(queryEndDate))
	if err != nil {
		return writeError(c, h.log, &domain.ValidationError{Field: queryEndDate, Reason: err.Error()})
	}
	branchID, err := optionalID(c, "branch_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	top := c.QueryInt("top", defaultTopProducts)
	if top < 0 {
		return writeError(c, h.log, &domain.ValidationError{Field: "top", Reason: "debe ser >= 0"})
	}
	out, err := h.uc.SalesSummary(c.UserContext(), from, to, branchID, top)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

func optionalID(c *fiber.Ctx, name string) (*int64, error) {
	if c.Query(name) == "" {
		return nil, nil
	}
	id := int64(c.QueryInt(name))
	if id <= 0 {
		return nil, &domain.ValidationError{Field: name, Reason: "debe ser un entero positivo"}
	}
	return &id, nil
}
