package http

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/application/dto"
	"github.com/jhoicas/supermercado-api/internal/domain"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/jwt"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// Locals keys para el principal autenticado en Fiber.
const (
	LocalSubject = "subject"
	LocalRole    = "role"
	LocalClaims  = "claims"
)

// AuthMiddleware valida el Bearer Token JWT y deja subject (email), rol y claims en c.Locals.
// Cualquier fallo responde 401 con el mismo mensaje.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c)
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return unauthorized(c)
		}
		c.Locals(LocalSubject, claims.Subject)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// RequireRole permite continuar solo si el rol del token está entre los indicados.
// Debe usarse DESPUÉS de AuthMiddleware, que ya rechaza tokens sin rol.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !slices.Contains(roles, GetRole(c)) {
			return forbidden(c)
		}
		return c.Next()
	}
}

// RequireCustomerOwnerOrRole deja pasar a los roles indicados y al cliente dueño de la fila :id,
// es decir, aquel cuyo email coincide con el subject del token. Debe usarse DESPUÉS de AuthMiddleware.
// Una fila inexistente responde 403 igual que una ajena.
func RequireCustomerOwnerOrRole(uc *catalog.UseCase, log *logger.Logger, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if slices.Contains(roles, role) {
			return c.Next()
		}
		if role != entity.RoleCustomer {
			return forbidden(c)
		}
		id, err := paramID(c)
		if err != nil {
			return writeError(c, log, err)
		}
		rec, err := uc.Get(c.UserContext(), entity.KindCustomer, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return writeError(c, log, err)
		}
		if rec == nil || !strings.EqualFold(rec.String(entity.ColEmail), GetSubject(c)) {
			return forbidden(c)
		}
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
}

// GetSubject devuelve el email del token (después del middleware de auth).
func GetSubject(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSubject).(string)
	return s
}

// GetRole devuelve el rol del token (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetClaims devuelve los claims completos; nil sin autenticar.
func GetClaims(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(LocalClaims).(*jwt.Claims)
	return claims
}
