// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, con la misma semántica de serialización por registro que el
// adaptador PostgreSQL (mutex por clave en lugar de SELECT FOR UPDATE).
// Se usa en desarrollo local y en los tests de la capa de aplicación.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
)

// Store estado compartido: los "committed" del adaptador. Los mapas solo se
// tocan bajo mu; los locks por registro viven aparte y se retienen durante
// toda una transacción.
type Store struct {
	mu           sync.Mutex
	stocks       map[uuid.UUID]*entity.Stock
	reservations map[uuid.UUID]*entity.StockReservation
	movements    []*entity.StockMovement

	recordLocks map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		stocks:       make(map[uuid.UUID]*entity.Stock),
		reservations: make(map[uuid.UUID]*entity.StockReservation),
		recordLocks:  make(map[string]*sync.Mutex),
	}
}

// recordLock devuelve el mutex del registro, creándolo si no existe.
func (s *Store) recordLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.recordLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.recordLocks[key] = l
	}
	return l
}

// cloneStock copia solo las columnas persistidas: los asientos pendientes y
// los eventos del agregado nunca entran al estado committed.
func cloneStock(s *entity.Stock) *entity.Stock {
	return &entity.Stock{
		ID:                s.ID,
		ExternalProductID: s.ExternalProductID,
		ExternalVariantID: s.ExternalVariantID,
		WarehouseID:       s.WarehouseID,
		QuantityAvailable: s.QuantityAvailable,
		QuantityReserved:  s.QuantityReserved,
		QuantityIncoming:  s.QuantityIncoming,
		LowStockThreshold: s.LowStockThreshold,
		ReorderPoint:      s.ReorderPoint,
		LastRestockedAt:   s.LastRestockedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func cloneReservation(r *entity.StockReservation) *entity.StockReservation {
	c := *r
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}
