package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// ReserveStockRequest reserva de unidades. external_cart_id y
// external_order_id son excluyentes: a lo sumo uno viene poblado.
type ReserveStockRequest struct {
	StockID         uuid.UUID  `json:"stock_id"`
	Quantity        int        `json:"quantity"`
	ReservationType string     `json:"reservation_type"`
	ExternalCartID  *uuid.UUID `json:"external_cart_id,omitempty"`
	ExternalOrderID *uuid.UUID `json:"external_order_id,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Ref construye la correlación externa a partir de los campos excluyentes.
// Devuelve false si vienen ambos poblados.
func (r ReserveStockRequest) Ref() (entity.ReservationRef, bool) {
	switch {
	case r.ExternalCartID != nil && r.ExternalOrderID != nil:
		return entity.NoRef(), false
	case r.ExternalCartID != nil:
		return entity.CartRef(*r.ExternalCartID), true
	case r.ExternalOrderID != nil:
		return entity.OrderRef(*r.ExternalOrderID), true
	default:
		return entity.NoRef(), true
	}
}

// ConfirmReservationRequest confirmación de una reserva contra una orden.
type ConfirmReservationRequest struct {
	ExternalOrderID uuid.UUID `json:"external_order_id"`
	PerformedByID   uuid.UUID `json:"performed_by_id"`
}

// ReleaseReservationRequest liberación explícita de una reserva.
type ReleaseReservationRequest struct {
	Reason string `json:"reason"`
}

// CompleteReservationRequest cierre de una reserva por orden cumplida.
type CompleteReservationRequest struct {
	PerformedByID uuid.UUID `json:"performed_by_id"`
}

// ReservationResponse representación HTTP de una reserva.
type ReservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	StockID         uuid.UUID  `json:"stock_id"`
	Quantity        int        `json:"quantity"`
	ReservationType string     `json:"reservation_type"`
	Status          string     `json:"status"`
	ExternalCartID  *uuid.UUID `json:"external_cart_id,omitempty"`
	ExternalOrderID *uuid.UUID `json:"external_order_id,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewReservationResponse mapea la entidad a su respuesta HTTP.
func NewReservationResponse(r *entity.StockReservation) ReservationResponse {
	resp := ReservationResponse{
		ID:              r.ID,
		StockID:         r.StockID,
		Quantity:        r.Quantity,
		ReservationType: string(r.ReservationType),
		Status:          string(r.Status),
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if id, ok := r.Ref.CartID(); ok {
		resp.ExternalCartID = &id
	}
	if id, ok := r.Ref.OrderID(); ok {
		resp.ExternalOrderID = &id
	}
	return resp
}
