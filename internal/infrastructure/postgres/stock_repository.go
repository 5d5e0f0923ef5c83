package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, external_product_id, external_variant_id, warehouse_id,
		quantity_available, quantity_reserved, quantity_incoming,
		low_stock_threshold, reorder_point, last_restocked_at, created_at, updated_at`

// StockRepo implementación del puerto StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de persistencia de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Create persiste un registro de stock nuevo. El par (variante, bodega) es único.
func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stocks (id, external_product_id, external_variant_id, warehouse_id,
			quantity_available, quantity_reserved, quantity_incoming,
			low_stock_threshold, reorder_point, last_restocked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		stock.ID, stock.ExternalProductID, stock.ExternalVariantID, stock.WarehouseID,
		stock.QuantityAvailable, stock.QuantityReserved, stock.QuantityIncoming,
		stock.LowStockThreshold, stock.ReorderPoint, stock.LastRestockedAt,
		stock.CreatedAt, stock.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateStock
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// GetByID obtiene un registro de stock por ID.
func (r *StockRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate obtiene el registro bloqueando su fila hasta el fin de la
// transacción. Solo tiene sentido dentro de un TxRunner.Run.
func (r *StockRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByVariantAndWarehouse obtiene el registro de un par (variante, bodega).
// Devuelve (nil, nil) si el par no existe.
func (r *StockRepo) GetByVariantAndWarehouse(ctx context.Context, variantID, warehouseID uuid.UUID) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE external_variant_id = $1 AND warehouse_id = $2`
	stock, err := r.scanOne(r.q.QueryRow(ctx, query, variantID, warehouseID))
	if errors.Is(err, domain.ErrStockNotFound) {
		return nil, nil
	}
	return stock, err
}

// ListByVariant lista los registros de una variante en todas las bodegas.
func (r *StockRepo) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE external_variant_id = $1 ORDER BY created_at`
	return r.list(ctx, query, variantID)
}

// ListByWarehouse lista los registros de una bodega.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE warehouse_id = $1 ORDER BY created_at`
	return r.list(ctx, query, warehouseID)
}

// ListLowStock lista los registros de la bodega con disponible en o bajo el umbral de alerta.
func (r *StockRepo) ListLowStock(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + `
		FROM stocks WHERE warehouse_id = $1 AND quantity_available <= low_stock_threshold
		ORDER BY quantity_available`
	return r.list(ctx, query, warehouseID)
}

// Save persiste contadores, umbrales y marcas de tiempo de un stock existente.
func (r *StockRepo) Save(ctx context.Context, stock *entity.Stock) error {
	query := `
		UPDATE stocks SET quantity_available = $2, quantity_reserved = $3, quantity_incoming = $4,
			low_stock_threshold = $5, reorder_point = $6, last_restocked_at = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		stock.ID, stock.QuantityAvailable, stock.QuantityReserved, stock.QuantityIncoming,
		stock.LowStockThreshold, stock.ReorderPoint, stock.LastRestockedAt, stock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

func (r *StockRepo) scanOne(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.ExternalProductID, &s.ExternalVariantID, &s.WarehouseID,
		&s.QuantityAvailable, &s.QuantityReserved, &s.QuantityIncoming,
		&s.LowStockThreshold, &s.ReorderPoint, &s.LastRestockedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStockNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(
			&s.ID, &s.ExternalProductID, &s.ExternalVariantID, &s.WarehouseID,
			&s.QuantityAvailable, &s.QuantityReserved, &s.QuantityIncoming,
			&s.LowStockThreshold, &s.ReorderPoint, &s.LastRestockedAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stocks = append(stocks, &s)
	}
	return stocks, rows.Err()
}
