package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// StockReservationRepository puerto de persistencia de reservas.
//
// GetByIDForUpdate serializa la reserva: una reserva solo la muta un caller
// a la vez. El orden de bloqueo es siempre reserva → stock para evitar
// deadlocks entre transiciones concurrentes.
type StockReservationRepository interface {
	Create(ctx context.Context, reservation *entity.StockReservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error)
	ListByStock(ctx context.Context, stockID uuid.UUID) ([]*entity.StockReservation, error)
	// FindExpired reservas PENDING con expires_at < now, hasta limit.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error)
	Save(ctx context.Context, reservation *entity.StockReservation) error
}
