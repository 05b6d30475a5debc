package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/application/dto"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// EntityHandler CRUD REST de una entidad sobre el almacén genérico.
type EntityHandler struct {
	uc   *catalog.UseCase
	kind entity.Kind
	log  *logger.Logger
}

// NewEntityHandler construye el handler para kind.
func NewEntityHandler(uc *catalog.UseCase, kind entity.Kind, log *logger.Logger) *EntityHandler {
	return &EntityHandler{uc: uc, kind: kind, log: log}
}

// Create POST /{recurso}
func (h *EntityHandler) Create(c *fiber.Ctx) error {
	fields, err := bindFields(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.uc.Create(c.UserContext(), h.kind, fields)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// List GET /{recurso}?skip=&limit=&col=&col__gte=&col__lte=
func (h *EntityHandler) List(c *fiber.Ctx) error {
	page, filters, err := parseListQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	recs, err := h.uc.List(c.UserContext(), h.kind, filters, page.Skip, page.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(recs)
}

// Get GET /{recurso}/:id
func (h *EntityHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.uc.Get(c.UserContext(), h.kind, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rec)
}

// Update PUT /{recurso}/:id con un parche parcial.
func (h *EntityHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	patch, err := bindFields(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.uc.Update(c.UserContext(), h.kind, id, patch)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rec)
}

// Delete DELETE /{recurso}/:id
func (h *EntityHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.uc.Delete(c.UserContext(), h.kind, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// paramID lee :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, error) {
	return positiveParam(c, "id")
}

func positiveParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: name, Reason: "debe ser un entero positivo"}
	}
	return int64(id), nil
}

var errInvalidPage = &domain.ValidationError{Field: "skip/limit", Reason: "skip >= 0, 0 <= limit <= 1000"}

// parseListQuery separa la paginación (skip, limit) de los filtros por columna.
func parseListQuery(c *fiber.Ctx) (dto.PageRequest, entity.Filters, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, nil, errInvalidPage
	}
	if err := validate.Struct(&page); err != nil {
		return page, nil, errInvalidPage
	}
	page.DefaultPage()

	filters := entity.Filters{}
	for k, v := range c.Queries() {
		if k == "skip" || k == "limit" {
			continue
		}
		filters[k] = v
	}
	return page, filters, nil
}
