package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

// StockQueries consultas de solo lectura sobre stock y libro de movimientos.
// Trabaja con repositorios atados al pool: no necesita transacción.
type StockQueries struct {
	stocks    repository.StockRepository
	movements repository.StockMovementRepository
}

// NewStockQueries construye las consultas.
func NewStockQueries(stocks repository.StockRepository, movements repository.StockMovementRepository) *StockQueries {
	return &StockQueries{stocks: stocks, movements: movements}
}

// GetByID devuelve el registro de stock o ErrStockNotFound.
func (q *StockQueries) GetByID(ctx context.Context, id uuid.UUID) (*entity.Stock, error) {
	if id == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	return q.stocks.GetByID(ctx, id)
}

// ListByVariant registros de una variante en todas las bodegas.
func (q *StockQueries) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]*entity.Stock, error) {
	if variantID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	return q.stocks.ListByVariant(ctx, variantID)
}

// ListByWarehouse registros de una bodega.
func (q *StockQueries) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error) {
	if warehouseID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	return q.stocks.ListByWarehouse(ctx, warehouseID)
}

// ListLowStock registros de la bodega con disponible en o bajo el umbral.
func (q *StockQueries) ListLowStock(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error) {
	if warehouseID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	return q.stocks.ListLowStock(ctx, warehouseID)
}

// ListMovements asientos del libro de un registro de stock, más recientes primero.
func (q *StockQueries) ListMovements(ctx context.Context, stockID uuid.UUID, limit, offset int) ([]*entity.StockMovement, error) {
	if stockID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return q.movements.ListByStock(ctx, stockID, limit, offset)
}
