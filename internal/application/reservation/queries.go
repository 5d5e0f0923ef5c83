package reservation

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

// Queries lecturas de reservas fuera de transacción (repos ligados al pool).
type Queries struct {
	reservations repository.StockReservationRepository
}

func NewQueries(reservations repository.StockReservationRepository) *Queries {
	return &Queries{reservations: reservations}
}

// GetByID obtiene una reserva por ID.
func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error) {
	return q.reservations.GetByID(ctx, id)
}

// ListByStock lista las reservas de un registro de stock.
func (q *Queries) ListByStock(ctx context.Context, stockID uuid.UUID) ([]*entity.StockReservation, error) {
	return q.reservations.ListByStock(ctx, stockID)
}
