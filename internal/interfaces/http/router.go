package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/beanstock-api/internal/application/admin"
	"github.com/jhoicas/beanstock-api/internal/application/auth"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC   *auth.AuthUseCase
	StockUC  *stock.StockUseCase
	AdminUC  *admin.AdminUseCase
	ReportUC *stock.ReportUseCase
	Log      *logger.Logger
}

// Router registra las rutas de la API bajo /api.
// El guard de cada caso de uso decide el acceso; RequireRole solo adelanta el rechazo
// en rutas exclusivas de Admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.AuthUC, deps.Log))
	protected.Post("/logout", authHandler.Logout)

	// Stocks: las rutas fijas van antes de /:id
	stockHandler := NewStockHandler(deps.StockUC, deps.Log)
	stocks := protected.Group("/stocks")
	stocks.Get("/", stockHandler.List)
	stocks.Post("/", stockHandler.Create)
	stocks.Get("/overview", stockHandler.Overview)
	stocks.Get("/stock-conditions/all", stockHandler.ListAll)
	stocks.Get("/:id", stockHandler.Get)
	stocks.Put("/:id", stockHandler.Update)
	stocks.Delete("/:id", stockHandler.Delete)

	// Recurso heredado
	conditions := protected.Group("/stock-conditions")
	conditions.Post("/", stockHandler.CreateCondition)
	conditions.Get("/:id", stockHandler.GetCondition)
	conditions.Put("/:id", stockHandler.UpdateCondition)
	conditions.Delete("/:id", stockHandler.DeleteCondition)

	// Admin
	adminHandler := NewAdminHandler(deps.AdminUC, deps.StockUC, deps.ReportUC, deps.Log)
	adminOnly := RequireRole(entity.RoleAdmin)
	adm := protected.Group("/admin")
	adm.Get("/users", adminOnly, adminHandler.ListFarmers)
	adm.Delete("/users/:id", adminOnly, adminHandler.DeleteUser)
	adm.Get("/users/:userId/stocks", adminOnly, adminHandler.UserStocks)
	adm.Get("/roles", adminOnly, adminHandler.ListRoles)
	adm.Post("/create-farmer", adminOnly, adminHandler.CreateFarmer)
	adm.Post("/assign-role", adminOnly, adminHandler.AssignRole)
	adm.Get("/user-roles/:userId", adminOnly, adminHandler.GetUserRoles)
	adm.Put("/update/:id", RequireRole(entity.RoleAdmin, entity.RoleFarmer), adminHandler.UpdateFarmer)
	adm.Get("/reports/stock-conditions", adminOnly, adminHandler.StockReport)
}
