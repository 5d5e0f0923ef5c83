package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

// TxRunner transacciones sobre el Store: los repos que recibe fn acumulan
// escrituras en un write-set que solo se aplica al estado committed si fn
// devuelve nil. Los locks por registro adquiridos con GetByIDForUpdate se
// retienen hasta el final, igual que un FOR UPDATE.
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	stocks repository.StockRepository,
	reservations repository.StockReservationRepository,
	movements repository.StockMovementRepository,
) error) error {
	tx := &txState{
		store:              r.store,
		heldKeys:           make(map[string]bool),
		stagedStocks:       make(map[uuid.UUID]*entity.Stock),
		stagedReservations: make(map[uuid.UUID]*entity.StockReservation),
	}
	defer tx.release()

	if err := fn(
		&StockRepo{store: r.store, tx: tx},
		&StockReservationRepo{store: r.store, tx: tx},
		&StockMovementRepo{store: r.store, tx: tx},
	); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// txState write-set y locks de una transacción en curso.
type txState struct {
	store    *Store
	heldKeys map[string]bool
	held     []*sync.Mutex

	stagedStocks       map[uuid.UUID]*entity.Stock
	stagedReservations map[uuid.UUID]*entity.StockReservation
	stagedMovements    []*entity.StockMovement
}

// lock adquiere el mutex del registro si la transacción aún no lo retiene.
// Los locks son reentrantes por transacción, no entre transacciones.
func (tx *txState) lock(key string) {
	if tx.heldKeys[key] {
		return
	}
	l := tx.store.recordLock(key)
	l.Lock()
	tx.heldKeys[key] = true
	tx.held = append(tx.held, l)
}

// commit aplica el write-set al estado committed.
func (tx *txState) commit() {
	tx.store.mu.Lock()
	for id, s := range tx.stagedStocks {
		tx.store.stocks[id] = s
	}
	for id, r := range tx.stagedReservations {
		tx.store.reservations[id] = r
	}
	tx.store.movements = append(tx.store.movements, tx.stagedMovements...)
	tx.store.mu.Unlock()

	tx.stagedStocks = nil
	tx.stagedReservations = nil
	tx.stagedMovements = nil
}

// release suelta los locks en orden inverso al de adquisición.
func (tx *txState) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
	tx.heldKeys = nil
}
