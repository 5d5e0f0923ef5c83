package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newTestStock(t *testing.T, available, threshold int) *entity.Stock {
	t.Helper()
	s, err := entity.NewStock(uuid.New(), uuid.New(), uuid.New(), available, threshold, threshold)
	require.NoError(t, err, "debe crearse el stock de prueba")
	// Descartar el StockCreated inicial para que cada test observe solo sus eventos
	s.ClearEvents()
	return s
}

func futureExpiry() time.Time {
	return time.Now().UTC().Add(30 * time.Minute)
}

// eventTypes tipos de los eventos acumulados, en orden.
func eventTypes(s *entity.Stock) []string {
	var types []string
	for _, e := range s.Events() {
		types = append(types, e.EventType())
	}
	return types
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestNewStock_RegistraEventoInicial(t *testing.T) {
	s, err := entity.NewStock(uuid.New(), uuid.New(), uuid.New(), 100, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, 100, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)
	assert.Equal(t, 0, s.QuantityIncoming)
	require.Len(t, s.Events(), 1, "la creación registra exactamente un evento")
	assert.Equal(t, "stock.created", s.Events()[0].EventType())
	assert.Equal(t, s.ID, s.Events()[0].AggregateID())
}

func TestNewStock_RechazaEntradasInvalidas(t *testing.T) {
	_, err := entity.NewStock(uuid.New(), uuid.Nil, uuid.New(), 10, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "variante nil debe rechazarse")

	_, err = entity.NewStock(uuid.New(), uuid.New(), uuid.Nil, 10, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "bodega nil debe rechazarse")

	_, err = entity.NewStock(uuid.New(), uuid.New(), uuid.New(), -1, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa debe rechazarse")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservar
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_MueveDisponibleAReservado(t *testing.T) {
	s := newTestStock(t, 100, 5)

	res, err := s.Reserve(30, entity.ReservationTypeCart, entity.CartRef(uuid.New()), futureExpiry())
	require.NoError(t, err)

	assert.Equal(t, 70, s.QuantityAvailable)
	assert.Equal(t, 30, s.QuantityReserved)
	assert.Equal(t, 100, s.TotalQuantity(), "reservar no cambia el total físico")
	assert.Equal(t, entity.ReservationPending, res.Status)
	assert.Equal(t, s.ID, res.StockID)

	require.Len(t, s.PendingMovements(), 1)
	mov := s.PendingMovements()[0]
	assert.Equal(t, entity.MovementReservation, mov.MovementType)
	assert.Equal(t, 30, mov.Quantity)
	assert.Equal(t, res.ID, mov.ExternalReferenceID, "el asiento referencia a la reserva")

	assert.Equal(t, []string{"stock.reserved"}, eventTypes(s))
}

func TestReserve_RechazaPorStockInsuficiente(t *testing.T) {
	s := newTestStock(t, 10, 0)

	_, err := s.Reserve(11, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var detail *domain.InsufficientStockError
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, 11, detail.Requested)
	assert.Equal(t, 10, detail.Available)

	// Todo o nada: el rechazo no muta contadores ni escribe asiento
	assert.Equal(t, 10, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)
	assert.Empty(t, s.PendingMovements())
	assert.Empty(t, s.Events())
}

func TestReserve_UnidadesReservadasNoCubrenOtraReserva(t *testing.T) {
	s := newTestStock(t, 10, 0)

	_, err := s.Reserve(8, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	require.NoError(t, err)

	// Quedan 2 disponibles; las 8 reservadas no cuentan para un nuevo pedido
	_, err = s.Reserve(3, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReserve_DisparaAlertaDeStockBajo(t *testing.T) {
	s := newTestStock(t, 20, 15)

	_, err := s.Reserve(10, entity.ReservationTypeCheckout, entity.NoRef(), futureExpiry())
	require.NoError(t, err)

	assert.Equal(t, []string{"stock.reserved", "stock.low-stock"}, eventTypes(s),
		"al quedar bajo el umbral se registra la alerta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Liberar / expirar (escenario: reservar y soltar)
// ──────────────────────────────────────────────────────────────────────────────

func TestReleaseReservation_DevuelveLasUnidades(t *testing.T) {
	s := newTestStock(t, 50, 0)
	res, err := s.Reserve(20, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	require.NoError(t, err)
	s.ClearPendingMovements()
	s.ClearEvents()

	require.NoError(t, s.ReleaseReservation(res, "carrito abandonado"))

	assert.Equal(t, entity.ReservationCancelled, res.Status)
	assert.Equal(t, 50, s.QuantityAvailable, "las unidades vuelven al disponible")
	assert.Equal(t, 0, s.QuantityReserved)

	require.Len(t, s.PendingMovements(), 1)
	assert.Equal(t, entity.MovementReservationRelease, s.PendingMovements()[0].MovementType)
	assert.Equal(t, []string{"stock.released"}, eventTypes(s))
}

func TestReleaseReservation_TerminalFallaSinTocarContadores(t *testing.T) {
	s := newTestStock(t, 50, 0)
	res, err := s.Reserve(20, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	require.NoError(t, err)
	require.NoError(t, s.ReleaseReservation(res, "primera liberación"))
	s.ClearPendingMovements()
	s.ClearEvents()

	err = s.ReleaseReservation(res, "segunda liberación")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition,
		"liberar una reserva terminal es una transición ilegal")

	// La doble liberación no duplica unidades
	assert.Equal(t, 50, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)
	assert.Empty(t, s.PendingMovements())
}

func TestExpireReservation_LiberaYEsIdempotente(t *testing.T) {
	s := newTestStock(t, 50, 0)
	expiry := time.Now().UTC().Add(-time.Minute) // ya vencida
	res, err := s.Reserve(20, entity.ReservationTypeCart, entity.NoRef(), expiry)
	require.NoError(t, err)

	changed, err := s.ExpireReservation(res, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, entity.ReservationExpired, res.Status)
	assert.Equal(t, 50, s.QuantityAvailable)

	// Segunda pasada del sweeper: no-op exitoso, sin liberar dos veces
	changed, err = s.ExpireReservation(res, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 50, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)
}

func TestExpireReservation_NoVencidaFalla(t *testing.T) {
	s := newTestStock(t, 50, 0)
	res, err := s.Reserve(20, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	require.NoError(t, err)

	changed, err := s.ExpireReservation(res, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrReservationNotExpired)
	assert.False(t, changed)
	assert.Equal(t, entity.ReservationPending, res.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Confirmar y completar (escenario: checkout a venta)
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteReservation_ConsumeLasUnidades(t *testing.T) {
	s := newTestStock(t, 100, 0)
	res, err := s.Reserve(25, entity.ReservationTypeCheckout, entity.NoRef(), futureExpiry())
	require.NoError(t, err)
	s.ClearPendingMovements()
	s.ClearEvents()

	orderID := uuid.New()
	require.NoError(t, res.Confirm(orderID))
	assert.Equal(t, entity.ReservationConfirmed, res.Status)
	gotOrder, ok := res.Ref.OrderID()
	require.True(t, ok, "confirmar registra la correlación con la orden")
	assert.Equal(t, orderID, gotOrder)

	operator := uuid.New()
	require.NoError(t, s.CompleteReservation(res, operator))

	assert.Equal(t, entity.ReservationCompleted, res.Status)
	assert.Equal(t, 75, s.QuantityAvailable, "completar no restaura el disponible")
	assert.Equal(t, 0, s.QuantityReserved)
	assert.Equal(t, 75, s.TotalQuantity(), "las unidades salieron físicamente")

	require.Len(t, s.PendingMovements(), 1)
	mov := s.PendingMovements()[0]
	assert.Equal(t, entity.MovementSale, mov.MovementType)
	assert.Equal(t, "ORDER", mov.ReferenceType)
	assert.Equal(t, orderID, mov.ExternalReferenceID)
	assert.Equal(t, operator, mov.ExternalPerformedByID)
}

func TestCompleteReservation_PendingNoSePuedeCompletar(t *testing.T) {
	s := newTestStock(t, 100, 0)
	res, err := s.Reserve(25, entity.ReservationTypeCheckout, entity.NoRef(), futureExpiry())
	require.NoError(t, err)

	err = s.CompleteReservation(res, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition,
		"PENDING → COMPLETED no existe en la tabla")
	assert.Equal(t, 25, s.QuantityReserved, "el fallo no toca contadores")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestDecrease_TodoONada(t *testing.T) {
	s := newTestStock(t, 5, 0)

	err := s.Decrease(6, entity.MovementDamaged, "", uuid.Nil, uuid.Nil, "lote dañado")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, s.QuantityAvailable)
	assert.Empty(t, s.PendingMovements())

	require.NoError(t, s.Decrease(5, entity.MovementDamaged, "", uuid.Nil, uuid.Nil, "lote dañado"))
	assert.Equal(t, 0, s.QuantityAvailable)
}

func TestIncrease_ActualizaLastRestockedAt(t *testing.T) {
	s := newTestStock(t, 10, 0)
	require.Nil(t, s.LastRestockedAt)

	require.NoError(t, s.Increase(15, entity.MovementPurchase, "PURCHASE_ORDER", uuid.New(), uuid.Nil, ""))

	assert.Equal(t, 25, s.QuantityAvailable)
	require.NotNil(t, s.LastRestockedAt)
	assert.Equal(t, []string{"stock.adjusted"}, eventTypes(s))
}

func TestIncrease_RechazaTipoDeSalida(t *testing.T) {
	s := newTestStock(t, 10, 0)
	err := s.Increase(5, entity.MovementSale, "", uuid.Nil, uuid.Nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "SALE no es un tipo de entrada")
}

func TestReceiveIncoming_DescuentaLoEsperadoSinQuedarNegativo(t *testing.T) {
	s := newTestStock(t, 10, 0)
	require.NoError(t, s.ExpectIncoming(20))
	assert.Equal(t, 20, s.QuantityIncoming)
	assert.Equal(t, 10, s.TotalQuantity(), "lo esperado no cuenta como físico")

	// Llega más de lo anunciado: incoming se trunca en cero
	require.NoError(t, s.ReceiveIncoming(25, uuid.New(), uuid.Nil, "recepción completa"))
	assert.Equal(t, 35, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityIncoming)

	require.Len(t, s.PendingMovements(), 1)
	assert.Equal(t, entity.MovementPurchase, s.PendingMovements()[0].MovementType)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación de unidades
// ──────────────────────────────────────────────────────────────────────────────

// El ciclo reservar → liberar y reservar → confirmar → completar nunca crea
// ni destruye unidades fuera de los asientos del libro.
func TestConservacionDeUnidades(t *testing.T) {
	s := newTestStock(t, 100, 0)

	resA, err := s.Reserve(30, entity.ReservationTypeCart, entity.NoRef(), futureExpiry())
	require.NoError(t, err)
	resB, err := s.Reserve(20, entity.ReservationTypeCheckout, entity.NoRef(), futureExpiry())
	require.NoError(t, err)
	assert.Equal(t, 100, s.TotalQuantity())

	require.NoError(t, s.ReleaseReservation(resA, "abandono"))
	assert.Equal(t, 100, s.TotalQuantity())

	require.NoError(t, resB.Confirm(uuid.New()))
	require.NoError(t, s.CompleteReservation(resB, uuid.Nil))
	assert.Equal(t, 80, s.TotalQuantity(), "solo la venta saca unidades")
	assert.Equal(t, 80, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)

	// Cada mutación dejó exactamente un asiento
	var reserved, released, sold int
	for _, mov := range s.PendingMovements() {
		switch mov.MovementType {
		case entity.MovementReservation:
			reserved += mov.Quantity
		case entity.MovementReservationRelease:
			released += mov.Quantity
		case entity.MovementSale:
			sold += mov.Quantity
		}
	}
	assert.Equal(t, 50, reserved)
	assert.Equal(t, 30, released)
	assert.Equal(t, 20, sold)
}

// ──────────────────────────────────────────────────────────────────────────────
// Umbrales
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateThresholds(t *testing.T) {
	s := newTestStock(t, 100, 5)

	require.NoError(t, s.UpdateThresholds(50, 60))
	assert.Equal(t, 50, s.LowStockThreshold)
	assert.Equal(t, 60, s.ReorderPoint)
	assert.True(t, s.NeedsReorder() == false && s.IsLowStock() == false)

	err := s.UpdateThresholds(-1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Evento de dominio: interfaz mínima cubierta por todos los tipos.
var _ = []event.DomainEvent{
	event.StockCreated{}, event.StockAdjusted{}, event.StockReserved{},
	event.StockReleased{}, event.LowStockAlert{},
}
