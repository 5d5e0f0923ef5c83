package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// CreateStockUseCase da de alta el registro de stock de un par
// (variante externa, bodega). El par es único: un segundo alta falla con
// ErrDuplicateStock.
type CreateStockUseCase struct {
	txRunner  TxRunner
	publisher EventPublisher
	log       *logger.Logger
	retry     RetryPolicy
}

// NewCreateStockUseCase construye el caso de uso.
func NewCreateStockUseCase(txRunner TxRunner, publisher EventPublisher, log *logger.Logger) *CreateStockUseCase {
	return &CreateStockUseCase{txRunner: txRunner, publisher: publisher, log: log, retry: DefaultRetryPolicy()}
}

// CreateStockInput entrada para crear un registro de stock.
type CreateStockInput struct {
	ExternalProductID uuid.UUID
	ExternalVariantID uuid.UUID
	WarehouseID       uuid.UUID
	InitialQuantity   int
	LowStockThreshold int
	ReorderPoint      int
}

// Execute crea el stock con el disponible inicial y publica StockCreated.
func (uc *CreateStockUseCase) Execute(ctx context.Context, input CreateStockInput) (*entity.Stock, error) {
	var created *entity.Stock

	err := WithRetry(ctx, uc.retry, func() error {
		return uc.txRunner.Run(ctx, func(
			stocks repository.StockRepository,
			_ repository.StockReservationRepository,
			_ repository.StockMovementRepository,
		) error {
			existing, err := stocks.GetByVariantAndWarehouse(ctx, input.ExternalVariantID, input.WarehouseID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrDuplicateStock
			}

			stock, err := entity.NewStock(input.ExternalProductID, input.ExternalVariantID,
				input.WarehouseID, input.InitialQuantity, input.LowStockThreshold, input.ReorderPoint)
			if err != nil {
				return err
			}
			if err := stocks.Create(ctx, stock); err != nil {
				return err
			}
			created = stock
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	PublishEvents(ctx, uc.publisher, uc.log, created)
	uc.log.Info().
		Str("stock_id", created.ID.String()).
		Str("variant_id", created.ExternalVariantID.String()).
		Str("warehouse_id", created.WarehouseID.String()).
		Int("initial_quantity", created.QuantityAvailable).
		Msg("stock creado")
	return created, nil
}
