package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
)

// Stock agregado raíz del motor de inventario: los contadores de un par
// (variante externa, bodega).
//
// Invariantes:
//   - QuantityAvailable >= 0 y QuantityReserved >= 0 en todo punto observable.
//   - QuantityAvailable + QuantityReserved solo cambia a través de un asiento
//     del libro de movimientos.
//   - Una reserva nunca retiene más unidades de las disponibles al momento
//     de reservar.
//
// Los métodos de negocio mutan los contadores, encolan el asiento
// correspondiente en PendingMovements y registran el evento de dominio.
// El caso de uso persiste todo en una transacción y publica los eventos
// después del commit. El agregado no es seguro para uso concurrente: la
// serialización por registro la impone la capa de persistencia
// (SELECT FOR UPDATE o mutex por clave en el adaptador en memoria).
type Stock struct {
	ID                uuid.UUID
	ExternalProductID uuid.UUID
	ExternalVariantID uuid.UUID
	WarehouseID       uuid.UUID
	QuantityAvailable int
	QuantityReserved  int
	QuantityIncoming  int
	LowStockThreshold int
	ReorderPoint      int
	LastRestockedAt   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	pendingMovements []*StockMovement
	events           []event.DomainEvent
}

// NewStock crea el registro para un par (variante, bodega) con el inventario
// inicial disponible y registra el evento StockCreated.
func NewStock(externalProductID, externalVariantID, warehouseID uuid.UUID,
	initialQuantity, lowStockThreshold, reorderPoint int) (*Stock, error) {
	if externalVariantID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	if initialQuantity < 0 || lowStockThreshold < 0 || reorderPoint < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	s := &Stock{
		ID:                uuid.New(),
		ExternalProductID: externalProductID,
		ExternalVariantID: externalVariantID,
		WarehouseID:       warehouseID,
		QuantityAvailable: initialQuantity,
		LowStockThreshold: lowStockThreshold,
		ReorderPoint:      reorderPoint,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.registerEvent(event.NewStockCreated(s.ID, externalProductID, externalVariantID,
		warehouseID, initialQuantity))
	return s, nil
}

// TotalQuantity unidades físicas comprometidas o libres (available + reserved).
func (s *Stock) TotalQuantity() int { return s.QuantityAvailable + s.QuantityReserved }

// IsLowStock indica si el disponible está en o bajo el umbral de alerta.
func (s *Stock) IsLowStock() bool { return s.QuantityAvailable <= s.LowStockThreshold }

// NeedsReorder indica si el disponible está en o bajo el punto de reorden.
func (s *Stock) NeedsReorder() bool { return s.QuantityAvailable <= s.ReorderPoint }

// Increase suma unidades disponibles (compras, devoluciones, ajustes de entrada).
func (s *Stock) Increase(quantity int, movementType MovementType, referenceType string,
	externalReferenceID, performedByID uuid.UUID, note string) error {
	if quantity <= 0 || !movementType.IncreasesStock() {
		return domain.ErrInvalidInput
	}
	s.QuantityAvailable += quantity
	now := time.Now().UTC()
	s.LastRestockedAt = &now
	s.UpdatedAt = now

	if err := s.appendMovement(movementType, quantity, referenceType, externalReferenceID, performedByID, note); err != nil {
		return err
	}
	s.registerEvent(event.NewStockAdjusted(s.ID, s.ExternalVariantID, s.WarehouseID,
		string(movementType), quantity, s.QuantityAvailable, referenceType))
	return nil
}

// Decrease resta unidades disponibles (ventas, daños, ajustes de salida).
// Todo o nada: si el disponible no alcanza, no muta nada y no escribe asiento.
func (s *Stock) Decrease(quantity int, movementType MovementType, referenceType string,
	externalReferenceID, performedByID uuid.UUID, note string) error {
	if quantity <= 0 || !movementType.DecreasesStock() {
		return domain.ErrInvalidInput
	}
	if quantity > s.QuantityAvailable {
		return &domain.InsufficientStockError{StockID: s.ID, Requested: quantity, Available: s.QuantityAvailable}
	}
	s.QuantityAvailable -= quantity
	s.UpdatedAt = time.Now().UTC()

	if err := s.appendMovement(movementType, quantity, referenceType, externalReferenceID, performedByID, note); err != nil {
		return err
	}
	s.registerEvent(event.NewStockAdjusted(s.ID, s.ExternalVariantID, s.WarehouseID,
		string(movementType), quantity, s.QuantityAvailable, referenceType))
	s.checkLowStock()
	return nil
}

// Reserve retiene unidades para un carrito/checkout/orden: verifica el
// disponible, mueve available → reserved y crea la reserva PENDING con su
// asiento RESERVATION. La verificación y la mutación son un solo paso; el
// adaptador de persistencia garantiza que no se intercalan con otro caller.
func (s *Stock) Reserve(quantity int, resType ReservationType, ref ReservationRef,
	expiresAt time.Time) (*StockReservation, error) {
	if quantity <= 0 || !resType.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if quantity > s.QuantityAvailable {
		return nil, &domain.InsufficientStockError{StockID: s.ID, Requested: quantity, Available: s.QuantityAvailable}
	}

	reservation, err := NewStockReservation(s.ID, quantity, resType, ref, expiresAt)
	if err != nil {
		return nil, err
	}

	s.QuantityAvailable -= quantity
	s.QuantityReserved += quantity
	s.UpdatedAt = time.Now().UTC()

	if err := s.appendMovement(MovementReservation, quantity, "RESERVATION", reservation.ID, uuid.Nil, ""); err != nil {
		return nil, err
	}

	var cartID, orderID *uuid.UUID
	if id, ok := ref.CartID(); ok {
		cartID = &id
	}
	if id, ok := ref.OrderID(); ok {
		orderID = &id
	}
	s.registerEvent(event.NewStockReserved(s.ID, reservation.ID, s.ExternalVariantID,
		s.WarehouseID, quantity, string(resType), cartID, orderID))
	s.checkLowStock()
	return reservation, nil
}

// ReleaseReservation cancela una reserva activa y devuelve sus unidades:
// reserved → available, asiento RESERVATION_RELEASE y evento StockReleased.
// La transición y el ajuste de contadores son una sola unidad: si la
// transición es ilegal no se toca ningún contador.
func (s *Stock) ReleaseReservation(reservation *StockReservation, reason string) error {
	if reservation == nil || reservation.StockID != s.ID {
		return domain.ErrInvalidInput
	}
	if err := reservation.Cancel(); err != nil {
		return err
	}
	s.releaseUnits(reservation, reason)
	return nil
}

// ExpireReservation libera una reserva vencida. Si otra transición terminal
// ganó la carrera devuelve (false, nil): ya resuelta, no es un error.
func (s *Stock) ExpireReservation(reservation *StockReservation, now time.Time) (bool, error) {
	if reservation == nil || reservation.StockID != s.ID {
		return false, domain.ErrInvalidInput
	}
	if reservation.Status.IsTerminal() {
		return false, nil
	}
	if !reservation.IsExpired(now) {
		return false, domain.ErrReservationNotExpired
	}
	if err := reservation.Expire(); err != nil {
		return false, err
	}
	s.releaseUnits(reservation, "expired")
	return true, nil
}

// releaseUnits devuelve las unidades de la reserva y registra asiento y evento.
func (s *Stock) releaseUnits(reservation *StockReservation, reason string) {
	s.QuantityReserved -= reservation.Quantity
	s.QuantityAvailable += reservation.Quantity
	s.UpdatedAt = time.Now().UTC()

	_ = s.appendMovement(MovementReservationRelease, reservation.Quantity,
		"RESERVATION", reservation.ID, uuid.Nil, reason)
	s.registerEvent(event.NewStockReleased(s.ID, reservation.ID, s.ExternalVariantID,
		s.WarehouseID, reservation.Quantity, reason))
}

// CompleteReservation consume una reserva CONFIRMED: las unidades salen
// físicamente (venta), reserved baja sin restaurar available y se escribe
// el asiento SALE contra la orden correlacionada.
func (s *Stock) CompleteReservation(reservation *StockReservation, performedByID uuid.UUID) error {
	if reservation == nil || reservation.StockID != s.ID {
		return domain.ErrInvalidInput
	}
	if err := reservation.Complete(); err != nil {
		return err
	}
	s.QuantityReserved -= reservation.Quantity
	s.UpdatedAt = time.Now().UTC()

	orderID, _ := reservation.Ref.OrderID()
	if err := s.appendMovement(MovementSale, reservation.Quantity, "ORDER", orderID,
		performedByID, "Reserva completada"); err != nil {
		return err
	}
	s.registerEvent(event.NewStockAdjusted(s.ID, s.ExternalVariantID, s.WarehouseID,
		string(MovementSale), reservation.Quantity, s.QuantityAvailable, "ORDER"))
	return nil
}

// ExpectIncoming anota unidades en tránsito (orden de compra colocada).
// No toca available ni reserved, por lo que no genera asiento.
func (s *Stock) ExpectIncoming(quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	s.QuantityIncoming += quantity
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ReceiveIncoming recibe unidades en bodega: suma al disponible, descuenta
// de lo esperado (sin quedar negativo, una recepción puede exceder lo
// anunciado) y asienta un movimiento PURCHASE.
func (s *Stock) ReceiveIncoming(quantity int, externalReferenceID, performedByID uuid.UUID, note string) error {
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	s.QuantityAvailable += quantity
	if s.QuantityIncoming > quantity {
		s.QuantityIncoming -= quantity
	} else {
		s.QuantityIncoming = 0
	}
	now := time.Now().UTC()
	s.LastRestockedAt = &now
	s.UpdatedAt = now

	if err := s.appendMovement(MovementPurchase, quantity, "PURCHASE_ORDER",
		externalReferenceID, performedByID, note); err != nil {
		return err
	}
	s.registerEvent(event.NewStockAdjusted(s.ID, s.ExternalVariantID, s.WarehouseID,
		string(MovementPurchase), quantity, s.QuantityAvailable, "PURCHASE_ORDER"))
	return nil
}

// UpdateThresholds actualiza los umbrales de alerta y reorden.
func (s *Stock) UpdateThresholds(lowStockThreshold, reorderPoint int) error {
	if lowStockThreshold < 0 || reorderPoint < 0 {
		return domain.ErrInvalidInput
	}
	s.LowStockThreshold = lowStockThreshold
	s.ReorderPoint = reorderPoint
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// PendingMovements asientos encolados por los métodos de negocio, aún sin persistir.
func (s *Stock) PendingMovements() []*StockMovement { return s.pendingMovements }

// ClearPendingMovements vacía la cola tras persistir los asientos.
func (s *Stock) ClearPendingMovements() { s.pendingMovements = nil }

// Events eventos de dominio acumulados, pendientes de publicación.
func (s *Stock) Events() []event.DomainEvent { return s.events }

// ClearEvents vacía los eventos tras publicarlos.
func (s *Stock) ClearEvents() { s.events = nil }

func (s *Stock) appendMovement(movementType MovementType, quantity int, referenceType string,
	externalReferenceID, performedByID uuid.UUID, note string) error {
	mov, err := NewStockMovement(s.ID, movementType, quantity, referenceType,
		externalReferenceID, performedByID, note)
	if err != nil {
		return err
	}
	s.pendingMovements = append(s.pendingMovements, mov)
	return nil
}

func (s *Stock) registerEvent(e event.DomainEvent) {
	s.events = append(s.events, e)
}

// checkLowStock registra LowStockAlert cada vez que una mutación deja el
// disponible en o bajo el umbral. Se alerta en cada mutación, sin
// de-duplicar por cruce de umbral.
func (s *Stock) checkLowStock() {
	if s.IsLowStock() {
		s.registerEvent(event.NewLowStockAlert(s.ID, s.ExternalVariantID, s.WarehouseID,
			s.QuantityAvailable, s.LowStockThreshold))
	}
}
