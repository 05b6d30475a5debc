package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/application/dto"
	"github.com/jhoicas/supermercado-api/internal/application/sales"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// Alias de consulta para el rango de fechas de venta.
const (
	queryStartDate = "start_date"
	queryEndDate   = "end_date"
)

// TransactionHandler ventas: alta atómica, consultas y comprobante.
type TransactionHandler struct {
	create  *sales.CreateTransactionUseCase
	query   *sales.QueryUseCase
	catalog *catalog.UseCase
	log     *logger.Logger
}

// NewTransactionHandler construye el handler de ventas.
func NewTransactionHandler(create *sales.CreateTransactionUseCase, query *sales.QueryUseCase, cat *catalog.UseCase, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{create: create, query: query, catalog: cat, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Crea cabecera, líneas y descuenta stock en una sola unidad de trabajo.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTransactionRequest  true  "cabecera y details"
// @Success      201   {object}  entity.TransactionWithLines
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	sale, err := h.create.Execute(c.UserContext(), in.Header(), in.Details)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// List godoc
// @Summary      Listar ventas
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        skip         query  int     false  "desplazamiento"
// @Param        limit        query  int     false  "máximo de filas"
// @Param        branch_id    query  int     false  "sucursal"
// @Param        customer_id  query  int     false  "cliente"
// @Param        start_date   query  string  false  "desde (YYYY-MM-DD)"
// @Param        end_date     query  string  false  "hasta (YYYY-MM-DD)"
// @Success      200   {array}   entity.Transaction
// @Router       /api/v1/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page, filters, err := parseListQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if v, ok := filters[queryStartDate]; ok {
		delete(filters, queryStartDate)
		filters[entity.ColDateOfTransaction+entity.SuffixGTE] = v
	}
	if v, ok := filters[queryEndDate]; ok {
		delete(filters, queryEndDate)
		filters[entity.ColDateOfTransaction+entity.SuffixLTE] = v
	}
	return h.list(c, filters, page)
}

// ListByCustomer GET /transactions/customer/:customer_id
func (h *TransactionHandler) ListByCustomer(c *fiber.Ctx) error {
	return h.listBy(c, "customer_id", entity.ColCustomerID)
}

// ListByBranch GET /transactions/branch/:branch_id
func (h *TransactionHandler) ListByBranch(c *fiber.Ctx) error {
	return h.listBy(c, "branch_id", entity.ColBranchID)
}

func (h *TransactionHandler) listBy(c *fiber.Ctx, param, col string) error {
	id, err := positiveParam(c, param)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, _, err := parseListQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.list(c, entity.Filters{col: id}, page)
}

func (h *TransactionHandler) list(c *fiber.Ctx, filters entity.Filters, page dto.PageRequest) error {
	out, err := h.query.List(c.UserContext(), filters, page.Skip, page.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Venta con sus líneas
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de la venta"
// @Success      200  {object}  entity.TransactionWithLines
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	sale, err := h.query.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(sale)
}

// Details GET /transactions/:id/details; 404 si la venta no tiene líneas.
func (h *TransactionHandler) Details(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	lines, err := h.query.ListLines(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if len(lines) == 0 {
		return writeError(c, h.log, domain.ErrNotFound)
	}
	return c.JSON(lines)
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         transactions
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "id de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/transactions/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pdf, filename, err := h.query.Receipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(pdf)
}

// Update PUT /transactions/:id; solo la cabecera, las líneas no se editan.
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	patch, err := bindFields(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.catalog.Update(c.UserContext(), entity.KindTransaction, id, patch)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(entity.TransactionFromRecord(rec))
}

// Delete DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.catalog.Delete(c.UserContext(), entity.KindTransaction, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
