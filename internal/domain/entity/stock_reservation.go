package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
)

// StockReservation retención temporal de unidades de un registro de stock,
// pendiente del desenlace de un carrito/checkout/orden. Una vez en estado
// terminal (EXPIRED, CANCELLED, COMPLETED) es inmutable y se conserva para
// auditoría.
type StockReservation struct {
	ID              uuid.UUID
	StockID         uuid.UUID
	Quantity        int
	ReservationType ReservationType
	Status          ReservationStatus
	Ref             ReservationRef
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewStockReservation construye una reserva PENDING. La caducidad es
// obligatoria: toda reserva no terminal tiene fecha de expiración.
func NewStockReservation(stockID uuid.UUID, quantity int, resType ReservationType,
	ref ReservationRef, expiresAt time.Time) (*StockReservation, error) {
	if stockID == uuid.Nil || quantity <= 0 || !resType.IsValid() || expiresAt.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	return &StockReservation{
		ID:              uuid.New(),
		StockID:         stockID,
		Quantity:        quantity,
		ReservationType: resType,
		Status:          ReservationPending,
		Ref:             ref,
		ExpiresAt:       expiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsExpired indica si el plazo de la reserva ya venció.
func (r *StockReservation) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// IsActive indica si la reserva sigue reteniendo unidades.
func (r *StockReservation) IsActive(now time.Time) bool {
	return !r.Status.IsTerminal() && !r.IsExpired(now)
}

// transition valida contra la tabla y aplica el cambio de estado.
func (r *StockReservation) transition(target ReservationStatus) error {
	if !r.Status.CanTransitionTo(target) {
		return &domain.InvalidTransitionError{Current: string(r.Status), Target: string(target)}
	}
	r.Status = target
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Confirm pasa la reserva a CONFIRMED y registra la correlación con la orden.
// No toca contadores de stock: las unidades ya estaban retenidas.
func (r *StockReservation) Confirm(externalOrderID uuid.UUID) error {
	if err := r.transition(ReservationConfirmed); err != nil {
		return err
	}
	if externalOrderID != uuid.Nil {
		r.Ref = OrderRef(externalOrderID)
	}
	return nil
}

// Complete pasa la reserva a COMPLETED (la orden correlacionada se cumplió).
func (r *StockReservation) Complete() error {
	return r.transition(ReservationCompleted)
}

// Cancel pasa la reserva a CANCELLED.
func (r *StockReservation) Cancel() error {
	return r.transition(ReservationCancelled)
}

// Expire pasa la reserva a EXPIRED.
func (r *StockReservation) Expire() error {
	return r.transition(ReservationExpired)
}
