package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// EmployeeHandler CRUD genérico de empleados más el listado de activos.
type EmployeeHandler struct {
	*EntityHandler
}

// NewEmployeeHandler construye el handler de empleados.
func NewEmployeeHandler(uc *catalog.UseCase, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{EntityHandler: NewEntityHandler(uc, entity.KindEmployee, log)}
}

// ListActive godoc
// @Summary      Empleados activos
// @Description  Empleados sin fecha de fin de contrato.
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query  int  false  "desplazamiento"
// @Param        limit  query  int  false  "máximo de filas"
// @Success      200  {array}   object
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/v1/employees/active [get]
func (h *EmployeeHandler) ListActive(c *fiber.Ctx) error {
	page, filters, err := parseListQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	recs, err := h.uc.ListActiveEmployees(c.UserContext(), filters, page.Skip, page.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(recs)
}
