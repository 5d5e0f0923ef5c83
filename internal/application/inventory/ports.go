package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// TxRunner ejecuta una función dentro de una transacción, pasando
// repositorios atados a esa transacción. Garantiza atomicidad para el motor:
// transición de reserva, contadores y asientos del libro se confirman o se
// descartan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stocks repository.StockRepository,
		reservations repository.StockReservationRepository,
		movements repository.StockMovementRepository,
	) error) error
}

// EventPublisher puerto de salida hacia el broker de eventos. El motor lo
// invoca después del commit; no implementa transporte.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// RetryPolicy acota los reintentos ante contención (ErrContention).
// Ningún caso de uso espera indefinidamente: agotado el presupuesto se
// propaga el fallo transitorio al caller.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy presupuesto por defecto: 3 intentos con backoff lineal.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 25 * time.Millisecond}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 25 * time.Millisecond
	}
	return p
}

// WithRetry ejecuta fn reintentando solo ante ErrContention, con backoff
// lineal entre intentos. Cualquier otro error corta de inmediato.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	policy = policy.normalized()
	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrContention) {
			return err
		}
		if attempt == policy.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Backoff * time.Duration(attempt)):
		}
	}
	return err
}

// PersistStock guarda los contadores del agregado y los asientos encolados
// dentro de la transacción en curso, y vacía la cola de asientos.
func PersistStock(ctx context.Context, stocks repository.StockRepository,
	movements repository.StockMovementRepository, stock *entity.Stock) error {
	if err := stocks.Save(ctx, stock); err != nil {
		return err
	}
	for _, mov := range stock.PendingMovements() {
		if err := movements.Create(ctx, mov); err != nil {
			return err
		}
	}
	stock.ClearPendingMovements()
	return nil
}

// PublishEvents entrega los eventos acumulados al publicador después del
// commit. Un fallo de publicación se registra pero no revierte la operación:
// la mutación ya está confirmada.
func PublishEvents(ctx context.Context, publisher EventPublisher, log *logger.Logger, stock *entity.Stock) {
	events := stock.Events()
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		log.Error().Err(err).
			Str("stock_id", stock.ID.String()).
			Int("events", len(events)).
			Msg("publicar eventos de dominio")
	}
	stock.ClearEvents()
}
