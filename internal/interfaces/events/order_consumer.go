// Package events consume los eventos del ciclo de vida de órdenes y
// carritos que resuelven las reservas de stock.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/application/reservation"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// orderMessage payload común de los eventos de órdenes/carritos. El campo
// reservation_id correlaciona con la reserva local.
type orderMessage struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	OrderID       uuid.UUID `json:"order_id"`
	CartID        uuid.UUID `json:"cart_id"`
}

// OrderConsumer traduce eventos externos a operaciones del gestor de
// reservas: order.confirmed confirma, order.cancelled y cart.expired liberan.
type OrderConsumer struct {
	manager *reservation.Manager
	log     *logger.Logger
}

func NewOrderConsumer(manager *reservation.Manager, log *logger.Logger) *OrderConsumer {
	return &OrderConsumer{manager: manager, log: log}
}

// Handle procesa un mensaje según su clave de enrutamiento. Los errores de
// dominio (reserva inexistente, transición ilegal) no son reintentables:
// se registran y el mensaje se confirma para no envenenar la cola.
func (c *OrderConsumer) Handle(ctx context.Context, routingKey string, body []byte) error {
	var msg orderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.log.Warn().Err(err).Str("routing_key", routingKey).Msg("mensaje ilegible, descartado")
		return nil
	}
	if msg.ReservationID == uuid.Nil {
		c.log.Warn().Str("routing_key", routingKey).Msg("mensaje sin reservation_id, descartado")
		return nil
	}

	var err error
	switch {
	case strings.HasSuffix(routingKey, "order.confirmed"):
		err = c.manager.Confirm(ctx, msg.ReservationID, msg.OrderID, uuid.Nil)
	case strings.HasSuffix(routingKey, "order.cancelled"):
		err = c.manager.Release(ctx, msg.ReservationID, "orden cancelada")
	case strings.HasSuffix(routingKey, "cart.expired"):
		err = c.manager.Release(ctx, msg.ReservationID, "carrito expirado")
	default:
		c.log.Warn().Str("routing_key", routingKey).Msg("clave de enrutamiento desconocida, descartado")
		return nil
	}

	if err != nil {
		if isNonRetryable(err) {
			c.log.Warn().Err(err).
				Str("routing_key", routingKey).
				Str("reservation_id", msg.ReservationID.String()).
				Msg("evento de orden no aplicable, descartado")
			return nil
		}
		return fmt.Errorf("procesar %s: %w", routingKey, err)
	}
	return nil
}

// isNonRetryable un redelivery no va a cambiar el resultado de estos fallos.
func isNonRetryable(err error) bool {
	return errors.Is(err, domain.ErrReservationNotFound) ||
		errors.Is(err, domain.ErrStockNotFound) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrInvalidInput)
}
