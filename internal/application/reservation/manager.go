// Package reservation implementa el ciclo de vida de las reservas de stock:
// reservar, confirmar, liberar, completar y expirar. Cada operación es una
// unidad atómica (transición de estado + contadores + asiento del libro) y
// revalida la tabla de transiciones antes de mutar.
package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/application/inventory"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// DefaultTTL caducidad por defecto de una reserva cuando el caller no envía
// expires_at (el carrito típico retiene 30 minutos).
const DefaultTTL = 30 * time.Minute

// Manager orquesta las reservas contra el agregado Stock. El orden de
// bloqueo es siempre reserva → stock, y las unidades solo se mueven a
// través de los métodos atómicos del agregado.
type Manager struct {
	txRunner  inventory.TxRunner
	publisher inventory.EventPublisher
	log       *logger.Logger
	retry     inventory.RetryPolicy
	ttl       time.Duration
}

// NewManager construye el gestor de reservas. ttl <= 0 usa DefaultTTL.
func NewManager(txRunner inventory.TxRunner, publisher inventory.EventPublisher,
	log *logger.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		txRunner:  txRunner,
		publisher: publisher,
		log:       log,
		retry:     inventory.DefaultRetryPolicy(),
		ttl:       ttl,
	}
}

// ReserveInput entrada para reservar unidades.
type ReserveInput struct {
	StockID         uuid.UUID
	Quantity        int
	ReservationType entity.ReservationType
	Ref             entity.ReservationRef
	// ExpiresAt cero aplica el TTL por defecto del gestor.
	ExpiresAt time.Time
}

// Reserve verifica el disponible bajo la fila bloqueada y crea la reserva
// PENDING. Ante InsufficientStock no se crea nada: el fallo del agregado se
// propaga intacto.
func (m *Manager) Reserve(ctx context.Context, input ReserveInput) (*entity.StockReservation, error) {
	if input.StockID == uuid.Nil || input.Quantity <= 0 || !input.ReservationType.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	expiresAt := input.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().UTC().Add(m.ttl)
	}

	var (
		stock       *entity.Stock
		reservation *entity.StockReservation
	)
	err := inventory.WithRetry(ctx, m.retry, func() error {
		return m.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			reservations repository.StockReservationRepository,
			movements repository.StockMovementRepository,
		) error {
			s, err := stocks.GetByIDForUpdate(ctx, input.StockID)
			if err != nil {
				return err
			}
			r, err := s.Reserve(input.Quantity, input.ReservationType, input.Ref, expiresAt)
			if err != nil {
				return err
			}
			if err := reservations.Create(ctx, r); err != nil {
				return err
			}
			if err := inventory.PersistStock(ctx, stocks, movements, s); err != nil {
				return err
			}
			stock, reservation = s, r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	inventory.PublishEvents(ctx, m.publisher, m.log, stock)
	m.log.Info().
		Str("reservation_id", reservation.ID.String()).
		Str("stock_id", stock.ID.String()).
		Int("quantity", reservation.Quantity).
		Str("type", string(reservation.ReservationType)).
		Msg("stock reservado")
	return reservation, nil
}

// Confirm pasa la reserva PENDING a CONFIRMED y registra la correlación con
// la orden. No cambia contadores: las unidades ya estaban retenidas.
func (m *Manager) Confirm(ctx context.Context, reservationID, externalOrderID, performedByID uuid.UUID) error {
	if reservationID == uuid.Nil {
		return domain.ErrInvalidInput
	}
	err := inventory.WithRetry(ctx, m.retry, func() error {
		return m.txRunner.Run(ctx, func(
			_ repository.StockRepository,
			reservations repository.StockReservationRepository,
			_ repository.StockMovementRepository,
		) error {
			r, err := reservations.GetByIDForUpdate(ctx, reservationID)
			if err != nil {
				return err
			}
			if err := r.Confirm(externalOrderID); err != nil {
				return err
			}
			return reservations.Save(ctx, r)
		})
	})
	if err != nil {
		return err
	}
	m.log.Info().
		Str("reservation_id", reservationID.String()).
		Str("order_id", externalOrderID.String()).
		Str("performed_by", performedByID.String()).
		Msg("reserva confirmada")
	return nil
}

// Release cancela una reserva activa (PENDING o CONFIRMED) y devuelve sus
// unidades al disponible. Sobre una reserva terminal falla con
// InvalidTransition sin tocar contadores.
func (m *Manager) Release(ctx context.Context, reservationID uuid.UUID, reason string) error {
	if reservationID == uuid.Nil {
		return domain.ErrInvalidInput
	}
	var stock *entity.Stock
	err := inventory.WithRetry(ctx, m.retry, func() error {
		return m.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			reservations repository.StockReservationRepository,
			movements repository.StockMovementRepository,
		) error {
			r, err := reservations.GetByIDForUpdate(ctx, reservationID)
			if err != nil {
				return err
			}
			s, err := stocks.GetByIDForUpdate(ctx, r.StockID)
			if err != nil {
				return err
			}
			if err := s.ReleaseReservation(r, reason); err != nil {
				return err
			}
			if err := reservations.Save(ctx, r); err != nil {
				return err
			}
			if err := inventory.PersistStock(ctx, stocks, movements, s); err != nil {
				return err
			}
			stock = s
			return nil
		})
	})
	if err != nil {
		return err
	}

	inventory.PublishEvents(ctx, m.publisher, m.log, stock)
	m.log.Info().
		Str("reservation_id", reservationID.String()).
		Str("reason", reason).
		Msg("reserva liberada")
	return nil
}

// Complete consume una reserva CONFIRMED cuando la orden correlacionada se
// cumplió: las unidades salen físicamente y se asienta la venta.
func (m *Manager) Complete(ctx context.Context, reservationID, performedByID uuid.UUID) error {
	if reservationID == uuid.Nil {
		return domain.ErrInvalidInput
	}
	var stock *entity.Stock
	err := inventory.WithRetry(ctx, m.retry, func() error {
		return m.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			reservations repository.StockReservationRepository,
			movements repository.StockMovementRepository,
		) error {
			r, err := reservations.GetByIDForUpdate(ctx, reservationID)
			if err != nil {
				return err
			}
			s, err := stocks.GetByIDForUpdate(ctx, r.StockID)
			if err != nil {
				return err
			}
			if err := s.CompleteReservation(r, performedByID); err != nil {
				return err
			}
			if err := reservations.Save(ctx, r); err != nil {
				return err
			}
			if err := inventory.PersistStock(ctx, stocks, movements, s); err != nil {
				return err
			}
			stock = s
			return nil
		})
	})
	if err != nil {
		return err
	}

	inventory.PublishEvents(ctx, m.publisher, m.log, stock)
	m.log.Info().
		Str("reservation_id", reservationID.String()).
		Msg("reserva completada")
	return nil
}

// Expire libera una reserva vencida. Devuelve si hubo cambio de estado:
// si otro caller ya la resolvió (terminal), es un no-op exitoso, no un
// error. Las carreras perdidas son esperables con el sweeper corriendo en
// paralelo al tráfico de usuarios.
func (m *Manager) Expire(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	if reservationID == uuid.Nil {
		return false, domain.ErrInvalidInput
	}
	var (
		stock   *entity.Stock
		changed bool
	)
	err := inventory.WithRetry(ctx, m.retry, func() error {
		return m.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			reservations repository.StockReservationRepository,
			movements repository.StockMovementRepository,
		) error {
			r, err := reservations.GetByIDForUpdate(ctx, reservationID)
			if err != nil {
				return err
			}
			if r.Status.IsTerminal() {
				changed = false
				return nil
			}
			s, err := stocks.GetByIDForUpdate(ctx, r.StockID)
			if err != nil {
				return err
			}
			released, err := s.ExpireReservation(r, time.Now().UTC())
			if err != nil {
				return err
			}
			if !released {
				changed = false
				return nil
			}
			if err := reservations.Save(ctx, r); err != nil {
				return err
			}
			if err := inventory.PersistStock(ctx, stocks, movements, s); err != nil {
				return err
			}
			stock, changed = s, true
			return nil
		})
	})
	if err != nil {
		return false, err
	}

	if changed {
		inventory.PublishEvents(ctx, m.publisher, m.log, stock)
	}
	return changed, nil
}
