package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// StockRepository puerto de persistencia del agregado Stock.
//
// GetByIDForUpdate serializa el registro: la implementación debe retener la
// exclusión (bloqueo de fila o mutex por clave) hasta el fin de la
// transacción en curso, de modo que el check-then-mutate del agregado nunca
// se intercale con otro caller sobre el mismo registro.
type StockRepository interface {
	Create(ctx context.Context, stock *entity.Stock) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Stock, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Stock, error)
	// GetByVariantAndWarehouse devuelve (nil, nil) si el par no existe.
	GetByVariantAndWarehouse(ctx context.Context, variantID, warehouseID uuid.UUID) (*entity.Stock, error)
	ListByVariant(ctx context.Context, variantID uuid.UUID) ([]*entity.Stock, error)
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error)
	// ListLowStock registros de la bodega con disponible <= umbral de alerta.
	ListLowStock(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error)
	// Save persiste contadores, umbrales y marcas de tiempo de un stock existente.
	Save(ctx context.Context, stock *entity.Stock) error
}
