package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción PostgreSQL,
// entregando repositorios ligados a la transacción. Si fn devuelve error
// la transacción se revierte; si no, se confirma.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	stocks repository.StockRepository,
	reservations repository.StockReservationRepository,
	movements repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("iniciar transacción: %w", mapTxError(err))
	}
	defer tx.Rollback(ctx)

	if err := fn(
		NewStockRepository(tx),
		NewStockReservationRepository(tx),
		NewStockMovementRepository(tx),
	); err != nil {
		return mapTxError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("confirmar transacción: %w", mapTxError(err))
	}
	return nil
}
