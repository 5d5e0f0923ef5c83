package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-engine/internal/application/reservation"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
	"github.com/tu-usuario/inventory-engine/internal/infrastructure/memory"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// capturePublisher acumula los eventos publicados (seguro para goroutines).
type capturePublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *capturePublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) byType(eventType string) []event.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store     *memory.Store
	manager   *reservation.Manager
	publisher *capturePublisher
	log       *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	publisher := &capturePublisher{}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	manager := reservation.NewManager(memory.NewTxRunner(store), publisher, log, 0)
	return &fixture{store: store, manager: manager, publisher: publisher, log: log}
}

// seedStock crea y persiste un stock con el disponible dado.
func (f *fixture) seedStock(t *testing.T, available int) *entity.Stock {
	t.Helper()
	stock, err := entity.NewStock(uuid.New(), uuid.New(), uuid.New(), available, 0, 0)
	require.NoError(t, err)
	stock.ClearEvents()
	require.NoError(t, memory.NewStockRepository(f.store).Create(context.Background(), stock))
	return stock
}

func (f *fixture) reloadStock(t *testing.T, id uuid.UUID) *entity.Stock {
	t.Helper()
	stock, err := memory.NewStockRepository(f.store).GetByID(context.Background(), id)
	require.NoError(t, err)
	return stock
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservar
// ──────────────────────────────────────────────────────────────────────────────

func TestManagerReserve_PersisteReservaYContadores(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 40)
	ctx := context.Background()

	res, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID:         stock.ID,
		Quantity:        15,
		ReservationType: entity.ReservationTypeCart,
		Ref:             entity.CartRef(uuid.New()),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, res.Status)
	assert.False(t, res.ExpiresAt.IsZero(), "sin expires_at explícito aplica el TTL por defecto")

	reloaded := f.reloadStock(t, stock.ID)
	assert.Equal(t, 25, reloaded.QuantityAvailable)
	assert.Equal(t, 15, reloaded.QuantityReserved)

	movements, err := memory.NewStockMovementRepository(f.store).ListByStock(ctx, stock.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1, "la reserva asienta exactamente un movimiento")
	assert.Equal(t, entity.MovementReservation, movements[0].MovementType)

	assert.Len(t, f.publisher.byType("stock.reserved"), 1, "el evento se publica tras el commit")
}

func TestManagerReserve_InsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 5)
	ctx := context.Background()

	_, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID:         stock.ID,
		Quantity:        6,
		ReservationType: entity.ReservationTypeCart,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	reloaded := f.reloadStock(t, stock.ID)
	assert.Equal(t, 5, reloaded.QuantityAvailable, "el rechazo no muta el stock persistido")

	movements, err := memory.NewStockMovementRepository(f.store).ListByStock(ctx, stock.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movements)
	assert.Empty(t, f.publisher.byType("stock.reserved"))
}

// N callers compitiendo por el mismo registro: nunca se sobrevende.
func TestManagerReserve_ConcurrenciaSinSobreventa(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 50)
	ctx := context.Background()

	const callers = 100
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.manager.Reserve(ctx, reservation.ReserveInput{
				StockID:         stock.ID,
				Quantity:        1,
				ReservationType: entity.ReservationTypeCart,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient, other int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			other++
		}
	}
	assert.Equal(t, 50, ok, "exactamente 50 reservas deben entrar")
	assert.Equal(t, 50, insufficient, "el resto debe rechazarse por stock insuficiente")
	assert.Zero(t, other, "ningún caller debe ver otro tipo de error")

	reloaded := f.reloadStock(t, stock.ID)
	assert.Equal(t, 0, reloaded.QuantityAvailable)
	assert.Equal(t, 50, reloaded.QuantityReserved)
	assert.Equal(t, 50, reloaded.TotalQuantity(), "las unidades se conservan")

	movements, err := memory.NewStockMovementRepository(f.store).ListByStock(ctx, stock.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 50, "un asiento por reserva exitosa, ninguno por rechazo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida vía manager
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_CicloCheckoutAVenta(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 30)
	ctx := context.Background()

	res, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID:         stock.ID,
		Quantity:        10,
		ReservationType: entity.ReservationTypeCheckout,
	})
	require.NoError(t, err)

	orderID := uuid.New()
	require.NoError(t, f.manager.Confirm(ctx, res.ID, orderID, uuid.Nil))

	// Confirmar no toca contadores
	mid := f.reloadStock(t, stock.ID)
	assert.Equal(t, 20, mid.QuantityAvailable)
	assert.Equal(t, 10, mid.QuantityReserved)

	require.NoError(t, f.manager.Complete(ctx, res.ID, uuid.New()))

	final := f.reloadStock(t, stock.ID)
	assert.Equal(t, 20, final.QuantityAvailable)
	assert.Equal(t, 0, final.QuantityReserved, "completar consume lo reservado")

	saved, err := memory.NewStockReservationRepository(f.store).GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationCompleted, saved.Status)
	gotOrder, ok := saved.Ref.OrderID()
	require.True(t, ok)
	assert.Equal(t, orderID, gotOrder)
}

func TestManagerRelease_DobleLiberacionFalla(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 30)
	ctx := context.Background()

	res, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID:         stock.ID,
		Quantity:        10,
		ReservationType: entity.ReservationTypeCart,
	})
	require.NoError(t, err)

	require.NoError(t, f.manager.Release(ctx, res.ID, "abandono"))
	err = f.manager.Release(ctx, res.ID, "reintento")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	reloaded := f.reloadStock(t, stock.ID)
	assert.Equal(t, 30, reloaded.QuantityAvailable, "la doble liberación no duplica unidades")
	assert.Equal(t, 0, reloaded.QuantityReserved)
}

func TestManagerExpire_NoOpSobreTerminal(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 30)
	ctx := context.Background()

	res, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID:         stock.ID,
		Quantity:        10,
		ReservationType: entity.ReservationTypeCart,
		ExpiresAt:       time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	changed, err := f.manager.Expire(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	// Segunda expiración: la carrera ya se resolvió, no es un error
	changed, err = f.manager.Expire(ctx, res.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	reloaded := f.reloadStock(t, stock.ID)
	assert.Equal(t, 30, reloaded.QuantityAvailable)
}

func TestManager_ReservaInexistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.manager.Confirm(ctx, uuid.New(), uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	err = f.manager.Release(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Expiry sweeper
// ──────────────────────────────────────────────────────────────────────────────

func TestSweeper_LiberaSoloLasVencidas(t *testing.T) {
	f := newFixture(t)
	stock := f.seedStock(t, 100)
	ctx := context.Background()

	// Dos vencidas, una vigente y una confirmada vencida (no debe tocarse)
	expired1, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID: stock.ID, Quantity: 10, ReservationType: entity.ReservationTypeCart,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)
	expired2, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID: stock.ID, Quantity: 5, ReservationType: entity.ReservationTypeCart,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	alive, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID: stock.ID, Quantity: 20, ReservationType: entity.ReservationTypeCart,
	})
	require.NoError(t, err)
	confirmed, err := f.manager.Reserve(ctx, reservation.ReserveInput{
		StockID: stock.ID, Quantity: 7, ReservationType: entity.ReservationTypeCheckout,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, f.manager.Confirm(ctx, confirmed.ID, uuid.New(), uuid.Nil))

	sweeper := reservation.NewExpirySweeper(
		memory.NewStockReservationRepository(f.store), f.manager, f.log, time.Minute, 100)

	count, err := sweeper.ReleaseExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "solo las PENDING vencidas se liberan")

	reservations := memory.NewStockReservationRepository(f.store)
	for _, id := range []uuid.UUID{expired1.ID, expired2.ID} {
		r, err := reservations.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.ReservationExpired, r.Status)
	}
	r, err := reservations.GetByID(ctx, alive.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, r.Status, "la vigente no se toca")
	r, err = reservations.GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationConfirmed, r.Status, "la confirmada no caduca")

	reloaded := f.reloadStock(t, stock.ID)
	assert.Equal(t, 100-20-7, reloaded.QuantityAvailable)
	assert.Equal(t, 27, reloaded.QuantityReserved)

	// Segunda pasada: idempotente
	count, err = sweeper.ReleaseExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 73, f.reloadStock(t, stock.ID).QuantityAvailable)
}
