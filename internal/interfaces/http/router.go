package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/warehouse"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC     *warehouse.OrderUseCase
	LineUC      *warehouse.LineUseCase
	InventoryUC *warehouse.InventoryUseCase
	LocationUC  *warehouse.LocationUseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Orders y sus líneas (protegido)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.LineUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Post("/:id/process", orderHandler.Process)
	orders.Post("/:id/unhold", orderHandler.Unhold)
	orders.Post("/:id/lines", orderHandler.AddLine)
	orders.Put("/:id/lines/:lineId", orderHandler.UpdateLine)
	orders.Delete("/:id/lines/:lineId", orderHandler.DeleteLine)
	orders.Post("/:id/lines/:lineId/replace", orderHandler.ReplaceLine)
	orders.Get("/:id/lines/:lineId/location", orderHandler.LineLocation)

	// Locations e inventario por ubicación (protegido)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Post("/:locationId/inventory", inventoryHandler.Register)
	locations.Get("/:locationId/inventory", inventoryHandler.ListByLocation)

	// Inventario por ID (protegido)
	inventory := protected.Group("/inventory")
	inventory.Get("/:id", inventoryHandler.GetByID)
}
