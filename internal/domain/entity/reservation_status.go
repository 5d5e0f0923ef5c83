package entity

import "github.com/google/uuid"

// ReservationStatus estado del ciclo de vida de una reserva.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// Tabla de transiciones legales. Los estados terminales no tienen salidas.
// CanTransitionTo e IsTerminal solo consultan esta tabla; es la única
// fuente de verdad del ciclo de vida.
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationExpired, ReservationCancelled},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled},
	ReservationExpired:   {},
	ReservationCancelled: {},
	ReservationCompleted: {},
}

// IsValid indica si el estado existe en la tabla.
func (s ReservationStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo evalúa si la transición s → target es legal. Predicado puro.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones.
func (s ReservationStatus) IsTerminal() bool {
	targets, ok := allowedTransitions[s]
	return ok && len(targets) == 0
}

// ReservationType origen de negocio de la reserva.
type ReservationType string

const (
	ReservationTypeCart      ReservationType = "CART"
	ReservationTypeCheckout  ReservationType = "CHECKOUT"
	ReservationTypeOrder     ReservationType = "ORDER"
	ReservationTypeBackorder ReservationType = "BACKORDER"
	ReservationTypePreorder  ReservationType = "PREORDER"
)

var reservationTypes = map[ReservationType]struct{}{
	ReservationTypeCart:      {},
	ReservationTypeCheckout:  {},
	ReservationTypeOrder:     {},
	ReservationTypeBackorder: {},
	ReservationTypePreorder:  {},
}

// IsValid indica si el tipo de reserva es conocido.
func (t ReservationType) IsValid() bool {
	_, ok := reservationTypes[t]
	return ok
}

// RefKind discrimina la correlación externa de una reserva.
type RefKind string

const (
	RefNone  RefKind = ""
	RefCart  RefKind = "CART"
	RefOrder RefKind = "ORDER"
)

// ReservationRef correlación externa de la reserva: exactamente un carrito,
// exactamente una orden, o ninguna. Los IDs son opacos; este servicio no
// valida su existencia, solo los almacena y los devuelve.
type ReservationRef struct {
	Kind RefKind
	ID   uuid.UUID
}

// NoRef reserva sin correlación externa.
func NoRef() ReservationRef { return ReservationRef{} }

// CartRef correlación con un carrito externo.
func CartRef(id uuid.UUID) ReservationRef { return ReservationRef{Kind: RefCart, ID: id} }

// OrderRef correlación con una orden externa.
func OrderRef(id uuid.UUID) ReservationRef { return ReservationRef{Kind: RefOrder, ID: id} }

// IsZero indica ausencia de correlación.
func (r ReservationRef) IsZero() bool { return r.Kind == RefNone }

// CartID devuelve el ID del carrito si la correlación es de carrito.
func (r ReservationRef) CartID() (uuid.UUID, bool) {
	if r.Kind == RefCart {
		return r.ID, true
	}
	return uuid.Nil, false
}

// OrderID devuelve el ID de la orden si la correlación es de orden.
func (r ReservationRef) OrderID() (uuid.UUID, bool) {
	if r.Kind == RefOrder {
		return r.ID, true
	}
	return uuid.Nil, false
}
