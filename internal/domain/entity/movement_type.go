package entity

// MovementType clasifica cada movimiento del libro de stock.
type MovementType string

const (
	MovementPurchase           MovementType = "PURCHASE"
	MovementSale               MovementType = "SALE"
	MovementReturn             MovementType = "RETURN"
	MovementAdjustmentIn       MovementType = "ADJUSTMENT_IN"
	MovementAdjustmentOut      MovementType = "ADJUSTMENT_OUT"
	MovementTransferIn         MovementType = "TRANSFER_IN"
	MovementTransferOut        MovementType = "TRANSFER_OUT"
	MovementReservation        MovementType = "RESERVATION"
	MovementReservationRelease MovementType = "RESERVATION_RELEASE"
	MovementDamaged            MovementType = "DAMAGED"
	MovementExpired            MovementType = "EXPIRED"
)

// movementEffect describe el efecto de un tipo de movimiento sobre los contadores.
// delta aplica sobre quantityAvailable (+1 entrada, -1 salida, 0 no aplica).
// reservation marca los tipos que mueven unidades entre available y reserved;
// esos tipos los genera el ciclo de reservas, nunca un ajuste manual.
type movementEffect struct {
	delta       int
	reservation bool
}

// Tabla de polaridad de los tipos de movimiento. Es la única fuente de verdad:
// las funciones IncreasesStock/DecreasesStock solo la consultan.
var movementEffects = map[MovementType]movementEffect{
	MovementPurchase:           {delta: +1},
	MovementSale:               {delta: -1},
	MovementReturn:             {delta: +1},
	MovementAdjustmentIn:       {delta: +1},
	MovementAdjustmentOut:      {delta: -1},
	MovementTransferIn:         {delta: +1},
	MovementTransferOut:        {delta: -1},
	MovementReservation:        {reservation: true},
	MovementReservationRelease: {reservation: true},
	MovementDamaged:            {delta: -1},
	MovementExpired:            {delta: -1},
}

// IsValid indica si el tipo existe en la tabla de polaridad.
func (t MovementType) IsValid() bool {
	_, ok := movementEffects[t]
	return ok
}

// IncreasesStock indica si el tipo suma unidades disponibles.
func (t MovementType) IncreasesStock() bool {
	return movementEffects[t].delta > 0
}

// DecreasesStock indica si el tipo resta unidades disponibles.
func (t MovementType) DecreasesStock() bool {
	return movementEffects[t].delta < 0
}

// IsReservation indica si el tipo pertenece al ciclo de reservas
// (mueve unidades entre available y reserved sin cambiar el total).
func (t MovementType) IsReservation() bool {
	return movementEffects[t].reservation
}

// Adjustable indica si el tipo puede usarse en un ajuste manual de stock.
// Los tipos de reserva quedan excluidos: solo los genera el Reservation Manager.
func (t MovementType) Adjustable() bool {
	eff, ok := movementEffects[t]
	return ok && !eff.reservation
}
