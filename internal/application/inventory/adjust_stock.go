package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// AdjustStockUseCase aplica ajustes manuales sobre el disponible de un
// registro de stock (compras, ventas, daños, ajustes de entrada/salida)
// bajo la fila bloqueada, con asiento en el libro y evento StockAdjusted.
type AdjustStockUseCase struct {
	txRunner  TxRunner
	publisher EventPublisher
	log       *logger.Logger
	retry     RetryPolicy
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(txRunner TxRunner, publisher EventPublisher, log *logger.Logger) *AdjustStockUseCase {
	return &AdjustStockUseCase{txRunner: txRunner, publisher: publisher, log: log, retry: DefaultRetryPolicy()}
}

// AdjustStockInput entrada para un ajuste de stock. Quantity es la magnitud
// (siempre positiva); el signo lo determina el tipo de movimiento.
type AdjustStockInput struct {
	StockID             uuid.UUID
	MovementType        entity.MovementType
	Quantity            int
	ReferenceType       string
	ExternalReferenceID uuid.UUID
	PerformedByID       uuid.UUID
	Note                string
}

// Execute bloquea la fila del stock, aplica el efecto del tipo de movimiento
// y persiste contadores + asiento en la misma transacción. Un ajuste de
// salida que dejaría el disponible negativo falla con InsufficientStock sin
// escribir ningún asiento.
func (uc *AdjustStockUseCase) Execute(ctx context.Context, input AdjustStockInput) (*entity.Stock, error) {
	if input.StockID == uuid.Nil || input.Quantity <= 0 || !input.MovementType.Adjustable() {
		return nil, domain.ErrInvalidInput
	}

	var adjusted *entity.Stock
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

			if input.MovementType.IncreasesStock() {
				err = stock.Increase(input.Quantity, input.MovementType, input.ReferenceType,
					input.ExternalReferenceID, input.PerformedByID, input.Note)
			} else {
				err = stock.Decrease(input.Quantity, input.MovementType, input.ReferenceType,
					input.ExternalReferenceID, input.PerformedByID, input.Note)
			}
			if err != nil {
				return err
			}

			if err := PersistStock(ctx, stocks, movements, stock); err != nil {
				return err
			}
			adjusted = stock
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	PublishEvents(ctx, uc.publisher, uc.log, adjusted)
	return adjusted, nil
}

// UpdateThresholds actualiza el umbral de alerta y el punto de reorden.
func (uc *AdjustStockUseCase) UpdateThresholds(ctx context.Context, stockID uuid.UUID,
	lowStockThreshold, reorderPoint int) (*entity.Stock, error) {
	if stockID == uuid.Nil {
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
			if err := stock.UpdateThresholds(lowStockThreshold, reorderPoint); err != nil {
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
