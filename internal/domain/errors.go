package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrStockNotFound       = errors.New("stock no encontrado")
	ErrReservationNotFound = errors.New("reserva no encontrada")
	ErrDuplicateStock      = errors.New("ya existe stock para esa variante en esa bodega")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransition   = errors.New("transición de estado de reserva inválida")
	// ErrReservationNotExpired: se intentó expirar una reserva cuyo plazo aún no vence.
	ErrReservationNotExpired = errors.New("la reserva aún no ha expirado")
	// ErrContention: conflicto de concurrencia transitorio (lock timeout / serialización).
	// El caso de uso reintenta un número acotado de veces antes de propagarlo.
	ErrContention = errors.New("conflicto de concurrencia sobre el registro de stock")
)

// InsufficientStockError detalla un rechazo por stock insuficiente:
// cuánto se pidió y cuánto había disponible en ese momento.
// errors.Is(err, ErrInsufficientStock) == true.
type InsufficientStockError struct {
	StockID   uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s: solicitado %d, disponible %d",
		e.StockID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransitionError detalla una transición ilegal del ciclo de vida de una reserva.
// errors.Is(err, ErrInvalidTransition) == true.
type InvalidTransitionError struct {
	Current string
	Target  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición de reserva inválida: %s → %s", e.Current, e.Target)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
