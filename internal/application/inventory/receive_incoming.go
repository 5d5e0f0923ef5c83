package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// IncomingUseCase gestiona las unidades en tránsito: anotar lo esperado de
// una orden de compra y recibirlo en bodega (incoming → available).
type IncomingUseCase struct {
	txRunner  TxRunner
	publisher EventPublisher
	log       *logger.Logger
	retry     RetryPolicy
}

// NewIncomingUseCase construye el caso de uso.
func NewIncomingUseCase(txRunner TxRunner, publisher EventPublisher, log *logger.Logger) *IncomingUseCase {
	return &IncomingUseCase{txRunner: txRunner, publisher: publisher, log: log, retry: DefaultRetryPolicy()}
}

// Expect anota unidades esperadas de una orden de compra. No toca el
// disponible, por lo que no genera asiento ni evento.
func (uc *IncomingUseCase) Expect(ctx context.Context, stockID uuid.UUID, quantity int) (*entity.Stock, error) {
	if stockID == uuid.Nil || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.Stock
	err := WithRetry(ctx, uc.retry, func() error {
		return uc.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			_ repository.StockReservationRepository,
			_ repository.StockMovementRepository,
		) error {
			stock, err := stocks.GetByIDForUpdate(ctx, stockID)
			if err != nil {
				return err
			}
			if err := stock.ExpectIncoming(quantity); err != nil {
				return err
			}
			if err := stocks.Save(ctx, stock); err != nil {
				return err
			}
			updated = stock
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReceiveIncomingInput entrada para recepción de mercancía.
type ReceiveIncomingInput struct {
	StockID             uuid.UUID
	Quantity            int
	ExternalReferenceID uuid.UUID
	PerformedByID       uuid.UUID
	Note                string
}

// Receive recibe unidades en bodega: suma al disponible, descuenta de lo
// esperado y asienta PURCHASE con lastRestockedAt actualizado.
func (uc *IncomingUseCase) Receive(ctx context.Context, input ReceiveIncomingInput) (*entity.Stock, error) {
	if input.StockID == uuid.Nil || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.Stock
	err := WithRetry(ctx, uc.retry, func() error {
		return uc.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			_ repository.StockReservationRepository,
			movements repository.StockMovementRepository,
		) error {
			stock, err := stocks.GetByIDForUpdate(ctx, input.StockID)
			if err != nil {
				return err
			}
			if err := stock.ReceiveIncoming(input.Quantity, input.ExternalReferenceID,
				input.PerformedByID, input.Note); err != nil {
				return err
			}
			if err := PersistStock(ctx, stocks, movements, stock); err != nil {
				return err
			}
			updated = stock
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	PublishEvents(ctx, uc.publisher, uc.log, updated)
	return updated, nil
}
