package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventory-engine/internal/application/dto"
	"github.com/tu-usuario/inventory-engine/internal/domain"
)

// respondDomainError traduce los errores de dominio a respuestas HTTP.
// 409 para conflictos de negocio (stock insuficiente, transición ilegal),
// 503 cuando la contención agotó los reintentos.
func respondDomainError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficient.Error(),
		})
	}
	var transition *domain.InvalidTransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INVALID_TRANSITION",
			Message: transition.Error(),
		})
	}
	switch {
	case errors.Is(err, domain.ErrStockNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "STOCK_NOT_FOUND", Message: "stock no encontrado"})
	case errors.Is(err, domain.ErrReservationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "RESERVATION_NOT_FOUND", Message: "reserva no encontrada"})
	case errors.Is(err, domain.ErrDuplicateStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_STOCK", Message: "ya existe stock para la variante en esa bodega"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrContention):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONTENTION", Message: "demasiada contención, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
