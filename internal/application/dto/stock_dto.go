package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// CreateStockRequest alta de stock para un par (variante, bodega).
type CreateStockRequest struct {
	ExternalProductID uuid.UUID `json:"external_product_id"`
	ExternalVariantID uuid.UUID `json:"external_variant_id"`
	WarehouseID       uuid.UUID `json:"warehouse_id"`
	InitialQuantity   int       `json:"initial_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	ReorderPoint      int       `json:"reorder_point"`
}

// AdjustStockRequest ajuste manual de stock. Quantity es magnitud positiva;
// el signo lo determina movement_type.
type AdjustStockRequest struct {
	StockID             uuid.UUID `json:"stock_id"`
	MovementType        string    `json:"movement_type"`
	Quantity            int       `json:"quantity"`
	ReferenceType       string    `json:"reference_type"`
	ExternalReferenceID uuid.UUID `json:"external_reference_id"`
	PerformedByID       uuid.UUID `json:"performed_by_id"`
	Note                string    `json:"note"`
}

// ReceiveIncomingRequest recepción de mercancía anunciada.
type ReceiveIncomingRequest struct {
	StockID             uuid.UUID `json:"stock_id"`
	Quantity            int       `json:"quantity"`
	ExternalReferenceID uuid.UUID `json:"external_reference_id"`
	PerformedByID       uuid.UUID `json:"performed_by_id"`
	Note                string    `json:"note"`
}

// ExpectIncomingRequest anuncio de unidades en tránsito.
type ExpectIncomingRequest struct {
	StockID  uuid.UUID `json:"stock_id"`
	Quantity int       `json:"quantity"`
}

// UpdateThresholdsRequest actualización de umbrales de alerta y reorden.
type UpdateThresholdsRequest struct {
	LowStockThreshold int `json:"low_stock_threshold"`
	ReorderPoint      int `json:"reorder_point"`
}

// StockResponse representación HTTP de un registro de stock.
type StockResponse struct {
	ID                uuid.UUID  `json:"id"`
	ExternalProductID uuid.UUID  `json:"external_product_id"`
	ExternalVariantID uuid.UUID  `json:"external_variant_id"`
	WarehouseID       uuid.UUID  `json:"warehouse_id"`
	QuantityAvailable int        `json:"quantity_available"`
	QuantityReserved  int        `json:"quantity_reserved"`
	QuantityIncoming  int        `json:"quantity_incoming"`
	TotalQuantity     int        `json:"total_quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	ReorderPoint      int        `json:"reorder_point"`
	IsLowStock        bool       `json:"is_low_stock"`
	NeedsReorder      bool       `json:"needs_reorder"`
	LastRestockedAt   *time.Time `json:"last_restocked_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewStockResponse mapea la entidad a su respuesta HTTP.
func NewStockResponse(s *entity.Stock) StockResponse {
	return StockResponse{
		ID:                s.ID,
		ExternalProductID: s.ExternalProductID,
		ExternalVariantID: s.ExternalVariantID,
		WarehouseID:       s.WarehouseID,
		QuantityAvailable: s.QuantityAvailable,
		QuantityReserved:  s.QuantityReserved,
		QuantityIncoming:  s.QuantityIncoming,
		TotalQuantity:     s.TotalQuantity(),
		LowStockThreshold: s.LowStockThreshold,
		ReorderPoint:      s.ReorderPoint,
		IsLowStock:        s.IsLowStock(),
		NeedsReorder:      s.NeedsReorder(),
		LastRestockedAt:   s.LastRestockedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// NewStockResponses mapea una lista de entidades.
func NewStockResponses(stocks []*entity.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, NewStockResponse(s))
	}
	return out
}

// MovementResponse asiento del libro de movimientos.
type MovementResponse struct {
	ID                    uuid.UUID `json:"id"`
	StockID               uuid.UUID `json:"stock_id"`
	MovementType          string    `json:"movement_type"`
	Quantity              int       `json:"quantity"`
	ReferenceType         string    `json:"reference_type,omitempty"`
	ExternalReferenceID   uuid.UUID `json:"external_reference_id,omitempty"`
	ExternalPerformedByID uuid.UUID `json:"external_performed_by_id,omitempty"`
	Note                  string    `json:"note,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// NewMovementResponses mapea los asientos a su respuesta HTTP.
func NewMovementResponses(movements []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, MovementResponse{
			ID:                    m.ID,
			StockID:               m.StockID,
			MovementType:          string(m.MovementType),
			Quantity:              m.Quantity,
			ReferenceType:         m.ReferenceType,
			ExternalReferenceID:   m.ExternalReferenceID,
			ExternalPerformedByID: m.ExternalPerformedByID,
			Note:                  m.Note,
			CreatedAt:             m.CreatedAt,
		})
	}
	return out
}
