package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

var (
	_ repository.StockRepository            = (*StockRepo)(nil)
	_ repository.StockReservationRepository = (*StockReservationRepo)(nil)
	_ repository.StockMovementRepository    = (*StockMovementRepo)(nil)
)

// StockRepo implementación en memoria del puerto StockRepository. Con tx nil
// opera en modo autocommit (lecturas directas del estado committed).
type StockRepo struct {
	store *Store
	tx    *txState
}

func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	// Serializar altas del mismo par para que el check de unicidad no se
	// intercale con otra transacción creando el mismo (variante, bodega).
	if r.tx != nil {
		r.tx.lock("pair:" + stock.ExternalVariantID.String() + ":" + stock.WarehouseID.String())
	}
	existing, err := r.GetByVariantAndWarehouse(ctx, stock.ExternalVariantID, stock.WarehouseID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicateStock
	}
	r.put(cloneStock(stock))
	return nil
}

func (r *StockRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Stock, error) {
	if r.tx != nil {
		if s, ok := r.tx.stagedStocks[id]; ok {
			return cloneStock(s), nil
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.stocks[id]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return cloneStock(s), nil
}

func (r *StockRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Stock, error) {
	if r.tx != nil {
		r.tx.lock("stock:" + id.String())
	}
	return r.GetByID(ctx, id)
}

func (r *StockRepo) GetByVariantAndWarehouse(ctx context.Context, variantID, warehouseID uuid.UUID) (*entity.Stock, error) {
	for _, s := range r.snapshot() {
		if s.ExternalVariantID == variantID && s.WarehouseID == warehouseID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *StockRepo) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]*entity.Stock, error) {
	return r.filter(func(s *entity.Stock) bool { return s.ExternalVariantID == variantID }), nil
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error) {
	return r.filter(func(s *entity.Stock) bool { return s.WarehouseID == warehouseID }), nil
}

func (r *StockRepo) ListLowStock(ctx context.Context, warehouseID uuid.UUID) ([]*entity.Stock, error) {
	stocks := r.filter(func(s *entity.Stock) bool {
		return s.WarehouseID == warehouseID && s.IsLowStock()
	})
	sort.Slice(stocks, func(i, j int) bool {
		return stocks[i].QuantityAvailable < stocks[j].QuantityAvailable
	})
	return stocks, nil
}

func (r *StockRepo) Save(ctx context.Context, stock *entity.Stock) error {
	if _, err := r.GetByID(ctx, stock.ID); err != nil {
		return err
	}
	r.put(cloneStock(stock))
	return nil
}

func (r *StockRepo) put(s *entity.Stock) {
	if r.tx != nil {
		r.tx.stagedStocks[s.ID] = s
		return
	}
	r.store.mu.Lock()
	r.store.stocks[s.ID] = s
	r.store.mu.Unlock()
}

// snapshot estado visible para la transacción: committed con el write-set encima.
func (r *StockRepo) snapshot() []*entity.Stock {
	r.store.mu.Lock()
	merged := make(map[uuid.UUID]*entity.Stock, len(r.store.stocks))
	for id, s := range r.store.stocks {
		merged[id] = s
	}
	r.store.mu.Unlock()
	if r.tx != nil {
		for id, s := range r.tx.stagedStocks {
			merged[id] = s
		}
	}
	stocks := make([]*entity.Stock, 0, len(merged))
	for _, s := range merged {
		stocks = append(stocks, cloneStock(s))
	}
	return stocks
}

func (r *StockRepo) filter(keep func(*entity.Stock) bool) []*entity.Stock {
	var stocks []*entity.Stock
	for _, s := range r.snapshot() {
		if keep(s) {
			stocks = append(stocks, s)
		}
	}
	sort.Slice(stocks, func(i, j int) bool {
		return stocks[i].CreatedAt.Before(stocks[j].CreatedAt)
	})
	return stocks
}

// StockReservationRepo implementación en memoria del puerto StockReservationRepository.
type StockReservationRepo struct {
	store *Store
	tx    *txState
}

func NewStockReservationRepository(store *Store) *StockReservationRepo {
	return &StockReservationRepo{store: store}
}

func (r *StockReservationRepo) Create(ctx context.Context, reservation *entity.StockReservation) error {
	r.put(cloneReservation(reservation))
	return nil
}

func (r *StockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error) {
	if r.tx != nil {
		if res, ok := r.tx.stagedReservations[id]; ok {
			return cloneReservation(res), nil
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return cloneReservation(res), nil
}

func (r *StockReservationRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.StockReservation, error) {
	if r.tx != nil {
		r.tx.lock("reservation:" + id.String())
	}
	return r.GetByID(ctx, id)
}

func (r *StockReservationRepo) ListByStock(ctx context.Context, stockID uuid.UUID) ([]*entity.StockReservation, error) {
	reservations := r.filter(func(res *entity.StockReservation) bool { return res.StockID == stockID })
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (r *StockReservationRepo) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error) {
	expired := r.filter(func(res *entity.StockReservation) bool {
		return res.Status == entity.ReservationPending && res.IsExpired(now)
	})
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (r *StockReservationRepo) Save(ctx context.Context, reservation *entity.StockReservation) error {
	if _, err := r.GetByID(ctx, reservation.ID); err != nil {
		return err
	}
	r.put(cloneReservation(reservation))
	return nil
}

func (r *StockReservationRepo) put(res *entity.StockReservation) {
	if r.tx != nil {
		r.tx.stagedReservations[res.ID] = res
		return
	}
	r.store.mu.Lock()
	r.store.reservations[res.ID] = res
	r.store.mu.Unlock()
}

func (r *StockReservationRepo) filter(keep func(*entity.StockReservation) bool) []*entity.StockReservation {
	r.store.mu.Lock()
	merged := make(map[uuid.UUID]*entity.StockReservation, len(r.store.reservations))
	for id, res := range r.store.reservations {
		merged[id] = res
	}
	r.store.mu.Unlock()
	if r.tx != nil {
		for id, res := range r.tx.stagedReservations {
			merged[id] = res
		}
	}
	var reservations []*entity.StockReservation
	for _, res := range merged {
		if keep(res) {
			reservations = append(reservations, cloneReservation(res))
		}
	}
	return reservations
}

// StockMovementRepo implementación en memoria del libro de movimientos.
type StockMovementRepo struct {
	store *Store
	tx    *txState
}

func NewStockMovementRepository(store *Store) *StockMovementRepo {
	return &StockMovementRepo{store: store}
}

func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if r.tx != nil {
		r.tx.stagedMovements = append(r.tx.stagedMovements, cloneMovement(movement))
		return nil
	}
	r.store.mu.Lock()
	r.store.movements = append(r.store.movements, cloneMovement(movement))
	r.store.mu.Unlock()
	return nil
}

func (r *StockMovementRepo) ListByStock(ctx context.Context, stockID uuid.UUID, limit, offset int) ([]*entity.StockMovement, error) {
	r.store.mu.Lock()
	var movements []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.StockID == stockID {
			movements = append(movements, cloneMovement(m))
		}
	}
	r.store.mu.Unlock()
	if r.tx != nil {
		for _, m := range r.tx.stagedMovements {
			if m.StockID == stockID {
				movements = append(movements, cloneMovement(m))
			}
		}
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
	if offset >= len(movements) {
		return nil, nil
	}
	movements = movements[offset:]
	if limit > 0 && len(movements) > limit {
		movements = movements[:limit]
	}
	return movements, nil
}
