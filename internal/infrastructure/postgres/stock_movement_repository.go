package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del puerto StockMovementRepository sobre
// PostgreSQL. El libro es solo-altas: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro de movimientos. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create asienta un movimiento en el libro.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, stock_id, movement_type, quantity,
			reference_type, external_reference_id, external_performed_by_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.StockID, string(movement.MovementType), movement.Quantity,
		nullIfEmpty(movement.ReferenceType), nullIfNilUUID(movement.ExternalReferenceID),
		nullIfNilUUID(movement.ExternalPerformedByID), nullIfEmpty(movement.Note),
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByStock lista los asientos de un registro de stock, más recientes primero.
func (r *StockMovementRepo) ListByStock(ctx context.Context, stockID uuid.UUID, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, stock_id, movement_type, quantity, reference_type,
			external_reference_id, external_performed_by_id, note, created_at
		FROM stock_movements WHERE stock_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, stockID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var movType string
		var refType, note *string
		var refID, performedBy *uuid.UUID
		if err := rows.Scan(
			&m.ID, &m.StockID, &movType, &m.Quantity, &refType,
			&refID, &performedBy, &note, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.MovementType = entity.MovementType(movType)
		if refType != nil {
			m.ReferenceType = *refType
		}
		if refID != nil {
			m.ExternalReferenceID = *refID
		}
		if performedBy != nil {
			m.ExternalPerformedByID = *performedBy
		}
		if note != nil {
			m.Note = *note
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfNilUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
