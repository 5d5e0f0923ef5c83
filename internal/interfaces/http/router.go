package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventory-engine/internal/application/inventory"
	"github.com/tu-usuario/inventory-engine/internal/application/reservation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateStock  *inventory.CreateStockUseCase
	AdjustStock  *inventory.AdjustStockUseCase
	Incoming     *inventory.IncomingUseCase
	StockQueries *inventory.StockQueries
	Reservations *reservation.Manager
	ResQueries   *reservation.Queries
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Todas las rutas de stock requieren Bearer Token: esta API la consumen
	// otros servicios (checkout, órdenes) y el panel de operación.
	stock := api.Group("/stock", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.CreateStock, deps.AdjustStock, deps.Incoming, deps.StockQueries)
	reservationHandler := NewReservationHandler(deps.Reservations, deps.ResQueries)

	// Reservas (servicios y admin)
	stock.Post("/reserve", reservationHandler.Reserve)
	reservations := stock.Group("/reservations")
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Post("/:id/confirm", reservationHandler.Confirm)
	reservations.Post("/:id/release", reservationHandler.Release)
	reservations.Post("/:id/complete", reservationHandler.Complete)

	// Consultas (las rutas con :id van al final para no capturar a las específicas)
	stock.Get("/variant/:variantId", stockHandler.ListByVariant)
	stock.Get("/warehouse/:warehouseId/low-stock", stockHandler.ListLowStock)
	stock.Get("/warehouse/:warehouseId", stockHandler.ListByWarehouse)
	stock.Get("/:id/movements", stockHandler.ListMovements)
	stock.Get("/:id/reservations", reservationHandler.ListByStock)
	stock.Get("/:id", stockHandler.GetByID)

	// Operación de inventario, solo admin. El grupo se registra al final:
	// su middleware solo alcanza a las rutas declaradas después de él.
	admin := stock.Group("/", RequireRole("admin"))
	admin.Post("/", stockHandler.Create)
	admin.Post("/adjust", stockHandler.Adjust)
	admin.Post("/incoming", stockHandler.ExpectIncoming)
	admin.Post("/receive", stockHandler.Receive)
	admin.Put("/:id/thresholds", stockHandler.UpdateThresholds)
}
