package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/supermercado-api/internal/application/analytics"
	"github.com/jhoicas/supermercado-api/internal/application/auth"
	"github.com/jhoicas/supermercado-api/internal/application/catalog"
	"github.com/jhoicas/supermercado-api/internal/application/sales"
	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	Catalog    *catalog.UseCase
	CreateSale *sales.CreateTransactionUseCase
	SalesQuery *sales.QueryUseCase
	Analytics  *analytics.DashboardUseCase
	JWTSecret  string
	// LoginRate formato ulule ("10-M"); vacío desactiva el límite.
	LoginRate string
	// Metrics se expone en /metrics si no es nil.
	Metrics nethttp.Handler
	Log     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) error {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api/v1")

	// Auth (público salvo /me)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	authGroup.Post("/signup/customer", authHandler.SignupCustomer)
	authGroup.Post("/signup/employee", authHandler.SignupEmployee)
	if deps.LoginRate != "" {
		limit, err := RateLimit(deps.LoginRate, deps.Log)
		if err != nil {
			return err
		}
		authGroup.Post("/login", limit, authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)
	staff := RequireRole(entity.Roles()...)

	registerEntity(protected.Group("/customers"), NewEntityHandler(deps.Catalog, entity.KindCustomer, deps.Log), entityGuards{
		list:   staff,
		get:    RequireCustomerOwnerOrRole(deps.Catalog, deps.Log, entity.Roles()...),
		create: staff,
		update: RequireCustomerOwnerOrRole(deps.Catalog, deps.Log, entity.RoleAdmin, entity.RoleManager),
		delete: managers,
	})
	catalogWrites := entityGuards{create: managers, update: managers, delete: managers}
	registerEntity(protected.Group("/branches"), NewEntityHandler(deps.Catalog, entity.KindBranch, deps.Log), catalogWrites)
	registerEntity(protected.Group("/products"), NewEntityHandler(deps.Catalog, entity.KindProduct, deps.Log), catalogWrites)

	employeesGroup := protected.Group("/employees", managers)
	employees := NewEmployeeHandler(deps.Catalog, deps.Log)
	employeesGroup.Get("/active", employees.ListActive)
	registerEntity(employeesGroup, employees.EntityHandler, entityGuards{})

	// Ventas
	transactions := protected.Group("/transactions")
	th := NewTransactionHandler(deps.CreateSale, deps.SalesQuery, deps.Catalog, deps.Log)
	transactions.Post("/", th.Create)
	transactions.Get("/", th.List)
	transactions.Get("/customer/:customer_id", th.ListByCustomer)
	transactions.Get("/branch/:branch_id", th.ListByBranch)
	transactions.Get("/:id", th.Get)
	transactions.Get("/:id/details", th.Details)
	transactions.Get("/:id/receipt", th.Receipt)
	transactions.Put("/:id", managers, th.Update)
	transactions.Delete("/:id", managers, th.Delete)

	// Reportes (ADMIN, MANAGER)
	reports := protected.Group("/analytics", managers)
	ah := NewAnalyticsHandler(deps.Analytics, deps.Log)
	reports.Get("/dashboard", ah.Dashboard)
	reports.Get("/sales", ah.Sales)
	return nil
}

// entityGuards middleware opcional por operación; nil deja pasar a cualquier usuario autenticado.
type entityGuards struct {
	list, get, create, update, delete fiber.Handler
}

// registerEntity monta el CRUD con sus guardas.
func registerEntity(r fiber.Router, h *EntityHandler, g entityGuards) {
	with := func(guard, handler fiber.Handler) []fiber.Handler {
		if guard == nil {
			return []fiber.Handler{handler}
		}
		return []fiber.Handler{guard, handler}
	}
	r.Get("/", with(g.list, h.List)...)
	r.Get("/:id", with(g.get, h.Get)...)
	r.Post("/", with(g.create, h.Create)...)
	r.Put("/:id", with(g.update, h.Update)...)
	r.Delete("/:id", with(g.delete, h.Delete)...)
}
