// Package event define los eventos de dominio del motor de inventario.
// Los agregados los acumulan durante sus métodos de negocio y el caso de uso
// los entrega al publicador externo después del commit; así nunca se publica
// un evento de una mutación que terminó en rollback.
package event

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent contrato mínimo de un evento de dominio.
type DomainEvent interface {
	// EventType nombre estable del evento (clave de enrutamiento).
	EventType() string
	// AggregateID identidad del registro de stock que emitió el evento.
	AggregateID() uuid.UUID
	// OccurredAt momento de la mutación.
	OccurredAt() time.Time
}

type base struct {
	StockID   uuid.UUID `json:"stock_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (b base) AggregateID() uuid.UUID { return b.StockID }
func (b base) OccurredAt() time.Time  { return b.Timestamp }

func newBase(stockID uuid.UUID) base {
	return base{StockID: stockID, Timestamp: time.Now().UTC()}
}

// StockCreated se registró un nuevo par (variante, bodega).
type StockCreated struct {
	base
	ExternalProductID uuid.UUID `json:"external_product_id"`
	ExternalVariantID uuid.UUID `json:"external_variant_id"`
	WarehouseID       uuid.UUID `json:"warehouse_id"`
	QuantityAvailable int       `json:"quantity_available"`
}

func (StockCreated) EventType() string { return "stock.created" }

// NewStockCreated construye el evento de creación de stock.
func NewStockCreated(stockID, productID, variantID, warehouseID uuid.UUID, available int) StockCreated {
	return StockCreated{
		base:              newBase(stockID),
		ExternalProductID: productID,
		ExternalVariantID: variantID,
		WarehouseID:       warehouseID,
		QuantityAvailable: available,
	}
}

// StockAdjusted cambió un contador por un movimiento del libro.
type StockAdjusted struct {
	base
	ExternalVariantID uuid.UUID `json:"external_variant_id"`
	WarehouseID       uuid.UUID `json:"warehouse_id"`
	MovementType      string    `json:"movement_type"`
	Quantity          int       `json:"quantity"`
	QuantityAvailable int       `json:"quantity_available"`
	ReferenceType     string    `json:"reference_type,omitempty"`
}

func (StockAdjusted) EventType() string { return "stock.adjusted" }

// NewStockAdjusted construye el evento de ajuste de contadores.
func NewStockAdjusted(stockID, variantID, warehouseID uuid.UUID, movementType string,
	quantity, available int, referenceType string) StockAdjusted {
	return StockAdjusted{
		base:              newBase(stockID),
		ExternalVariantID: variantID,
		WarehouseID:       warehouseID,
		MovementType:      movementType,
		Quantity:          quantity,
		QuantityAvailable: available,
		ReferenceType:     referenceType,
	}
}

// StockReserved se apartaron unidades para un carrito/checkout/orden.
type StockReserved struct {
	base
	ReservationID     uuid.UUID  `json:"reservation_id"`
	ExternalVariantID uuid.UUID  `json:"external_variant_id"`
	WarehouseID       uuid.UUID  `json:"warehouse_id"`
	Quantity          int        `json:"quantity"`
	ReservationType   string     `json:"reservation_type"`
	ExternalCartID    *uuid.UUID `json:"external_cart_id,omitempty"`
	ExternalOrderID   *uuid.UUID `json:"external_order_id,omitempty"`
}

func (StockReserved) EventType() string { return "stock.reserved" }

// NewStockReserved construye el evento de reserva de unidades.
func NewStockReserved(stockID, reservationID, variantID, warehouseID uuid.UUID,
	quantity int, reservationType string, cartID, orderID *uuid.UUID) StockReserved {
	return StockReserved{
		base:              newBase(stockID),
		ReservationID:     reservationID,
		ExternalVariantID: variantID,
		WarehouseID:       warehouseID,
		Quantity:          quantity,
		ReservationType:   reservationType,
		ExternalCartID:    cartID,
		ExternalOrderID:   orderID,
	}
}

// StockReleased una reserva devolvió sus unidades (cancelación o expiración).
type StockReleased struct {
	base
	ReservationID     uuid.UUID `json:"reservation_id"`
	ExternalVariantID uuid.UUID `json:"external_variant_id"`
	WarehouseID       uuid.UUID `json:"warehouse_id"`
	Quantity          int       `json:"quantity"`
	Reason            string    `json:"reason"`
}

func (StockReleased) EventType() string { return "stock.released" }

// NewStockReleased construye el evento de liberación de una reserva.
func NewStockReleased(stockID, reservationID, variantID, warehouseID uuid.UUID,
	quantity int, reason string) StockReleased {
	return StockReleased{
		base:              newBase(stockID),
		ReservationID:     reservationID,
		ExternalVariantID: variantID,
		WarehouseID:       warehouseID,
		Quantity:          quantity,
		Reason:            reason,
	}
}

// LowStockAlert el disponible quedó en o bajo el umbral configurado.
type LowStockAlert struct {
	base
	ExternalVariantID uuid.UUID `json:"external_variant_id"`
	WarehouseID       uuid.UUID `json:"warehouse_id"`
	QuantityAvailable int       `json:"quantity_available"`
	LowStockThreshold int       `json:"low_stock_threshold"`
}

func (LowStockAlert) EventType() string { return "stock.low-stock" }

// NewLowStockAlert construye la alerta de stock bajo.
func NewLowStockAlert(stockID, variantID, warehouseID uuid.UUID, available, threshold int) LowStockAlert {
	return LowStockAlert{
		base:              newBase(stockID),
		ExternalVariantID: variantID,
		WarehouseID:       warehouseID,
		QuantityAvailable: available,
		LowStockThreshold: threshold,
	}
}
