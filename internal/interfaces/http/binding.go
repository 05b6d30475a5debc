package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// errInvalidBody cuerpo que no es JSON válido.
var errInvalidBody = &domain.ValidationError{Field: "body", Reason: "JSON inválido"}

// bindJSON decodifica el cuerpo en un DTO y aplica sus tags validate. Los valores sin tipo
// (any) conservan los números como json.Number para no perder precisión en importes.
func bindJSON(c *fiber.Ctx, out any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return errInvalidBody
	}
	if err := validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate body: %w", err)
		}
		errs := make(domain.ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, &domain.ValidationError{Field: fe.Field(), Reason: describe(fe)})
		}
		if len(errs) == 1 {
			return errs[0]
		}
		return errs
	}
	return nil
}

// bindFields decodifica un objeto JSON en un mapa de campos.
func bindFields(c *fiber.Ctx) (entity.Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	var fields entity.Fields
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, errInvalidBody
	}
	return fields, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo requerido"
	case "email":
		return "email inválido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "datetime":
		return "formato esperado " + fe.Param()
	default:
		return "no cumple " + fe.Tag()
	}
}
