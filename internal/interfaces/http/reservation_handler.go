package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/application/dto"
	"github.com/tu-usuario/inventory-engine/internal/application/reservation"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// ReservationHandler maneja las peticiones HTTP de reservas de stock (protegido).
type ReservationHandler struct {
	manager *reservation.Manager
	queries *reservation.Queries
}

// NewReservationHandler construye el handler.
func NewReservationHandler(manager *reservation.Manager, queries *reservation.Queries) *ReservationHandler {
	return &ReservationHandler{manager: manager, queries: queries}
}

// Reserve godoc
// @Summary      Reservar unidades de un registro de stock
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveStockRequest  true  "stock_id, quantity, reservation_type, correlación externa"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/reserve [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ref, ok := in.Ref()
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "external_cart_id y external_order_id son excluyentes"})
	}
	var expiresAt time.Time
	if in.ExpiresAt != nil {
		expiresAt = *in.ExpiresAt
	}
	res, err := h.manager.Reserve(c.Context(), reservation.ReserveInput{
		StockID:         in.StockID,
		Quantity:        in.Quantity,
		ReservationType: entity.ReservationType(in.ReservationType),
		Ref:             ref,
		ExpiresAt:       expiresAt,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReservationResponse(res))
}

// Confirm godoc
// @Summary      Confirmar una reserva contra una orden creada
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Reservation ID (UUID)"
// @Param        body  body  dto.ConfirmReservationRequest  true  "external_order_id"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ConfirmReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.manager.Confirm(c.Context(), id, in.ExternalOrderID, in.PerformedByID); err != nil {
		return respondDomainError(c, err)
	}
	return h.respondReservation(c, id)
}

// Release godoc
// @Summary      Liberar una reserva activa (devuelve las unidades al disponible)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Reservation ID (UUID)"
// @Param        body  body  dto.ReleaseReservationRequest  false  "reason"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ReleaseReservationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	reason := in.Reason
	if reason == "" {
		reason = "liberación manual"
	}
	if err := h.manager.Release(c.Context(), id, reason); err != nil {
		return respondDomainError(c, err)
	}
	return h.respondReservation(c, id)
}

// Complete godoc
// @Summary      Completar una reserva confirmada (la orden se cumplió)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Reservation ID (UUID)"
// @Param        body  body  dto.CompleteReservationRequest  false  "performed_by_id"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock/reservations/{id}/complete [post]
func (h *ReservationHandler) Complete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.CompleteReservationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if err := h.manager.Complete(c.Context(), id, in.PerformedByID); err != nil {
		return respondDomainError(c, err)
	}
	return h.respondReservation(c, id)
}

// GetByID godoc
// @Summary      Consultar una reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Reservation ID (UUID)"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/stock/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	return h.respondReservation(c, id)
}

// ListByStock godoc
// @Summary      Reservas de un registro de stock
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Stock ID (UUID)"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/v1/stock/{id}/reservations [get]
func (h *ReservationHandler) ListByStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	reservations, err := h.queries.ListByStock(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, dto.NewReservationResponse(r))
	}
	return c.JSON(out)
}

func (h *ReservationHandler) respondReservation(c *fiber.Ctx, id uuid.UUID) error {
	res, err := h.queries.GetByID(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewReservationResponse(res))
}
