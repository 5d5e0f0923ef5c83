package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos. Solo altas y
// lectura: los asientos nunca se actualizan ni se borran.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByStock(ctx context.Context, stockID uuid.UUID, limit, offset int) ([]*entity.StockMovement, error)
}
