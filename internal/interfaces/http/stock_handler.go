package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/application/dto"
	"github.com/tu-usuario/inventory-engine/internal/application/inventory"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de registros de stock (protegido).
type StockHandler struct {
	createUC *inventory.CreateStockUseCase
	adjustUC *inventory.AdjustStockUseCase
	incoming *inventory.IncomingUseCase
	queries  *inventory.StockQueries
}

// NewStockHandler construye el handler.
func NewStockHandler(createUC *inventory.CreateStockUseCase, adjustUC *inventory.AdjustStockUseCase,
	incoming *inventory.IncomingUseCase, queries *inventory.StockQueries) *StockHandler {
	return &StockHandler{createUC: createUC, adjustUC: adjustUC, incoming: incoming, queries: queries}
}

// Create godoc
// @Summary      Crear registro de stock para un par (variante, bodega)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "external_variant_id, warehouse_id, initial_quantity, umbrales"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.createUC.Execute(c.Context(), inventory.CreateStockInput{
		ExternalProductID: in.ExternalProductID,
		ExternalVariantID: in.ExternalVariantID,
		WarehouseID:       in.WarehouseID,
		InitialQuantity:   in.InitialQuantity,
		LowStockThreshold: in.LowStockThreshold,
		ReorderPoint:      in.ReorderPoint,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockResponse(stock))
}

// Adjust godoc
// @Summary      Ajustar stock (entrada o salida manual)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "stock_id, movement_type, quantity"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.adjustUC.Execute(c.Context(), inventory.AdjustStockInput{
		StockID:             in.StockID,
		MovementType:        entity.MovementType(in.MovementType),
		Quantity:            in.Quantity,
		ReferenceType:       in.ReferenceType,
		ExternalReferenceID: in.ExternalReferenceID,
		PerformedByID:       in.PerformedByID,
		Note:                in.Note,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock))
}

// ExpectIncoming godoc
// @Summary      Anunciar unidades en tránsito (orden de compra colocada)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpectIncomingRequest  true  "stock_id, quantity"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/incoming [post]
func (h *StockHandler) ExpectIncoming(c *fiber.Ctx) error {
	var in dto.ExpectIncomingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.incoming.Expect(c.Context(), in.StockID, in.Quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock))
}

// Receive godoc
// @Summary      Recibir mercancía en bodega
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveIncomingRequest  true  "stock_id, quantity, referencia de la orden de compra"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/receive [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveIncomingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.incoming.Receive(c.Context(), inventory.ReceiveIncomingInput{
		StockID:             in.StockID,
		Quantity:            in.Quantity,
		ExternalReferenceID: in.ExternalReferenceID,
		PerformedByID:       in.PerformedByID,
		Note:                in.Note,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock))
}

// UpdateThresholds godoc
// @Summary      Actualizar umbrales de alerta y reorden
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Stock ID (UUID)"
// @Param        body  body  dto.UpdateThresholdsRequest  true  "low_stock_threshold, reorder_point"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/{id}/thresholds [put]
func (h *StockHandler) UpdateThresholds(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.adjustUC.UpdateThresholds(c.Context(), id, in.LowStockThreshold, in.ReorderPoint)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock))
}

// GetByID godoc
// @Summary      Consultar un registro de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Stock ID (UUID)"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/stock/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	stock, err := h.queries.GetByID(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock))
}

// ListByVariant godoc
// @Summary      Stock de una variante en todas las bodegas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variantId  path  string  true  "Variant ID (UUID)"
// @Success      200  {array}  dto.StockResponse
// @Router       /api/v1/stock/variant/{variantId} [get]
func (h *StockHandler) ListByVariant(c *fiber.Ctx) error {
	variantID, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "variantId inválido"})
	}
	stocks, err := h.queries.ListByVariant(c.Context(), variantID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponses(stocks))
}

// ListByWarehouse godoc
// @Summary      Stock de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path  string  true  "Warehouse ID (UUID)"
// @Success      200  {array}  dto.StockResponse
// @Router       /api/v1/stock/warehouse/{warehouseId} [get]
func (h *StockHandler) ListByWarehouse(c *fiber.Ctx) error {
	warehouseID, err := uuid.Parse(c.Params("warehouseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouseId inválido"})
	}
	stocks, err := h.queries.ListByWarehouse(c.Context(), warehouseID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponses(stocks))
}

// ListLowStock godoc
// @Summary      Registros bajo el umbral de alerta en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path  string  true  "Warehouse ID (UUID)"
// @Success      200  {array}  dto.StockResponse
// @Router       /api/v1/stock/warehouse/{warehouseId}/low-stock [get]
func (h *StockHandler) ListLowStock(c *fiber.Ctx) error {
	warehouseID, err := uuid.Parse(c.Params("warehouseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouseId inválido"})
	}
	stocks, err := h.queries.ListLowStock(c.Context(), warehouseID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewStockResponses(stocks))
}

// ListMovements godoc
// @Summary      Libro de movimientos de un registro de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "Stock ID (UUID)"
// @Param        limit   query  int     false  "Máximo de asientos (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/v1/stock/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	movements, err := h.queries.ListMovements(c.Context(), id, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewMovementResponses(movements))
}
