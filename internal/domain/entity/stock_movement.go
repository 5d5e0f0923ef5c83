package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
)

// StockMovement asiento inmutable del libro de movimientos: un registro por
// cada cambio de cantidad sobre un registro de stock. Nunca se actualiza ni
// se borra; se consume para auditoría y reportes.
type StockMovement struct {
	ID                    uuid.UUID
	StockID               uuid.UUID
	MovementType          MovementType
	Quantity              int // magnitud, siempre positiva; el signo lo da el tipo
	ReferenceType         string
	ExternalReferenceID   uuid.UUID
	ExternalPerformedByID uuid.UUID
	Note                  string
	CreatedAt             time.Time
}

// NewStockMovement construye un asiento del libro. Quantity debe ser positiva
// y el tipo debe existir en la tabla de polaridad.
func NewStockMovement(stockID uuid.UUID, movementType MovementType, quantity int,
	referenceType string, externalReferenceID, performedByID uuid.UUID, note string) (*StockMovement, error) {
	if stockID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	if !movementType.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return &StockMovement{
		ID:                    uuid.New(),
		StockID:               stockID,
		MovementType:          movementType,
		Quantity:              quantity,
		ReferenceType:         referenceType,
		ExternalReferenceID:   externalReferenceID,
		ExternalPerformedByID: performedByID,
		Note:                  note,
		CreatedAt:             time.Now().UTC(),
	}, nil
}

// IsIncrease indica si el asiento sumó unidades disponibles.
func (m *StockMovement) IsIncrease() bool { return m.MovementType.IncreasesStock() }

// IsDecrease indica si el asiento restó unidades disponibles.
func (m *StockMovement) IsDecrease() bool { return m.MovementType.DecreasesStock() }
