package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

var _ repository.StockReservationRepository = (*StockReservationRepo)(nil)

const reservationColumns = `id, stock_id, quantity, reservation_type, status,
		external_cart_id, external_order_id, expires_at, created_at, updated_at`

// StockReservationRepo implementación del puerto StockReservationRepository sobre PostgreSQL.
type StockReservationRepo struct {
	q Querier
}

// NewStockReservationRepository construye el adaptador de persistencia de reservas. Pasar pool o tx (Querier).
func NewStockReservationRepository(q Querier) *StockReservationRepo {
	return &StockReservationRepo{q: q}
}

// Create persiste una reserva nueva.
func (r *StockReservationRepo) Create(ctx context.Context, reservation *entity.StockReservation) error {
	query := `
		INSERT INTO stock_reservations (id, stock_id, quantity, reservation_type, status,
			external_cart_id, external_order_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	cartID, orderID := refColumns(reservation.Ref)
	_, err := r.q.Exec(ctx, query,
		reservation.ID, reservation.StockID, reservation.Quantity,
		string(reservation.ReservationType), string(reservation.Status),
		cartID, orderID, reservation.ExpiresAt, reservation.CreatedAt, reservation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva por ID.
func (r *StockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations WHERE id = $1`
	return scanReservation(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate obtiene la reserva bloqueando su fila hasta el fin de la
// transacción. El orden de bloqueo es siempre reserva → stock.
func (r *StockReservationRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations WHERE id = $1 FOR UPDATE`
	return scanReservation(r.q.QueryRow(ctx, query, id))
}

// ListByStock lista las reservas de un registro de stock, más recientes primero.
func (r *StockReservationRepo) ListByStock(ctx context.Context, stockID uuid.UUID) ([]*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations
		WHERE stock_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, stockID)
}

// FindExpired lista reservas PENDING ya vencidas, más antiguas primero, hasta
// limit. Una reserva CONFIRMED ya no caduca: la orden correlacionada decide.
func (r *StockReservationRepo) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations
		WHERE status = 'PENDING' AND expires_at < $1
		ORDER BY expires_at LIMIT $2`
	return r.list(ctx, query, now, limit)
}

// Save persiste estado, correlación y marca de tiempo de una reserva existente.
func (r *StockReservationRepo) Save(ctx context.Context, reservation *entity.StockReservation) error {
	query := `
		UPDATE stock_reservations SET status = $2, external_cart_id = $3, external_order_id = $4, updated_at = $5
		WHERE id = $1`
	cartID, orderID := refColumns(reservation.Ref)
	cmd, err := r.q.Exec(ctx, query,
		reservation.ID, string(reservation.Status), cartID, orderID, reservation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *StockReservationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*entity.StockReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func scanReservation(row pgx.Row) (*entity.StockReservation, error) {
	var res entity.StockReservation
	var resType, status string
	var cartID, orderID *uuid.UUID
	err := row.Scan(
		&res.ID, &res.StockID, &res.Quantity, &resType, &status,
		&cartID, &orderID, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	res.ReservationType = entity.ReservationType(resType)
	res.Status = entity.ReservationStatus(status)
	res.Ref = refFromColumns(cartID, orderID)
	return &res, nil
}

// refColumns proyecta la referencia externa a las columnas nullable
// external_cart_id / external_order_id (a lo sumo una no nula).
func refColumns(ref entity.ReservationRef) (cartID, orderID *uuid.UUID) {
	if id, ok := ref.CartID(); ok {
		cartID = &id
	}
	if id, ok := ref.OrderID(); ok {
		orderID = &id
	}
	return cartID, orderID
}

func refFromColumns(cartID, orderID *uuid.UUID) entity.ReservationRef {
	switch {
	case orderID != nil:
		return entity.OrderRef(*orderID)
	case cartID != nil:
		return entity.CartRef(*cartID)
	default:
		return entity.NoRef()
	}
}
