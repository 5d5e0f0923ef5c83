package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// La tabla de transiciones es la única fuente de verdad del ciclo de vida:
// este test la recorre completa, incluidas las celdas prohibidas.
func TestCanTransitionTo_TablaCompleta(t *testing.T) {
	all := []entity.ReservationStatus{
		entity.ReservationPending,
		entity.ReservationConfirmed,
		entity.ReservationExpired,
		entity.ReservationCancelled,
		entity.ReservationCompleted,
	}

	allowed := map[entity.ReservationStatus]map[entity.ReservationStatus]bool{
		entity.ReservationPending: {
			entity.ReservationConfirmed: true,
			entity.ReservationExpired:   true,
			entity.ReservationCancelled: true,
		},
		entity.ReservationConfirmed: {
			entity.ReservationCompleted: true,
			entity.ReservationCancelled: true,
		},
		entity.ReservationExpired:   {},
		entity.ReservationCancelled: {},
		entity.ReservationCompleted: {},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			got := from.CanTransitionTo(to)
			assert.Equal(t, want, got, "transición %s → %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, entity.ReservationPending.IsTerminal())
	assert.False(t, entity.ReservationConfirmed.IsTerminal())
	assert.True(t, entity.ReservationExpired.IsTerminal())
	assert.True(t, entity.ReservationCancelled.IsTerminal())
	assert.True(t, entity.ReservationCompleted.IsTerminal())
}

func TestIsValid_EstadoDesconocido(t *testing.T) {
	assert.False(t, entity.ReservationStatus("SHIPPED").IsValid())
	assert.False(t, entity.ReservationStatus("SHIPPED").IsTerminal(),
		"un estado desconocido no es terminal, es inválido")
	assert.True(t, entity.ReservationPending.IsValid())
}

func TestReservationRef_Excluyente(t *testing.T) {
	assert.True(t, entity.NoRef().IsZero())

	cart := entity.CartRef(mustUUID(t))
	_, isCart := cart.CartID()
	_, isOrder := cart.OrderID()
	assert.True(t, isCart)
	assert.False(t, isOrder, "una referencia de carrito no es de orden")
}
