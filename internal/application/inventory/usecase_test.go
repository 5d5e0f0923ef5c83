package inventory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-engine/internal/application/inventory"
	"github.com/tu-usuario/inventory-engine/internal/domain"
	"github.com/tu-usuario/inventory-engine/internal/domain/entity"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
	"github.com/tu-usuario/inventory-engine/internal/infrastructure/memory"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

// nopPublisher descarta los eventos (los tests de publicación viven en el
// paquete reservation).
type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func TestCreateStock_ParUnico(t *testing.T) {
	store := memory.NewStore()
	uc := inventory.NewCreateStockUseCase(memory.NewTxRunner(store), nopPublisher{}, testLogger())
	ctx := context.Background()

	input := inventory.CreateStockInput{
		ExternalProductID: uuid.New(),
		ExternalVariantID: uuid.New(),
		WarehouseID:       uuid.New(),
		InitialQuantity:   40,
		LowStockThreshold: 5,
		ReorderPoint:      10,
	}
	stock, err := uc.Execute(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 40, stock.QuantityAvailable)

	// Mismo par (variante, bodega): rechazado
	_, err = uc.Execute(ctx, input)
	assert.ErrorIs(t, err, domain.ErrDuplicateStock)

	// Misma variante en otra bodega: permitido
	input.WarehouseID = uuid.New()
	_, err = uc.Execute(ctx, input)
	assert.NoError(t, err)
}

func TestAdjustStock_RechazaTiposDeReserva(t *testing.T) {
	store := memory.NewStore()
	uc := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), nopPublisher{}, testLogger())

	// Los movimientos de reserva solo los escribe el gestor de reservas
	for _, mt := range []entity.MovementType{entity.MovementReservation, entity.MovementReservationRelease} {
		_, err := uc.Execute(context.Background(), inventory.AdjustStockInput{
			StockID:      uuid.New(),
			MovementType: mt,
			Quantity:     1,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo %s no es ajustable a mano", mt)
	}
}

func TestAdjustStock_EntradaYSalida(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	log := testLogger()
	createUC := inventory.NewCreateStockUseCase(memory.NewTxRunner(store), nopPublisher{}, log)
	adjustUC := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), nopPublisher{}, log)

	stock, err := createUC.Execute(ctx, inventory.CreateStockInput{
		ExternalProductID: uuid.New(),
		ExternalVariantID: uuid.New(),
		WarehouseID:       uuid.New(),
		InitialQuantity:   10,
	})
	require.NoError(t, err)

	adjusted, err := adjustUC.Execute(ctx, inventory.AdjustStockInput{
		StockID:      stock.ID,
		MovementType: entity.MovementAdjustmentIn,
		Quantity:     5,
		Note:         "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, adjusted.QuantityAvailable)

	_, err = adjustUC.Execute(ctx, inventory.AdjustStockInput{
		StockID:      stock.ID,
		MovementType: entity.MovementDamaged,
		Quantity:     20,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "la salida no puede dejar el disponible negativo")

	movements, err := memory.NewStockMovementRepository(store).ListByStock(ctx, stock.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "el rechazo no asienta movimiento")
}

func TestIncoming_ExpectYReceive(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	log := testLogger()
	createUC := inventory.NewCreateStockUseCase(memory.NewTxRunner(store), nopPublisher{}, log)
	incomingUC := inventory.NewIncomingUseCase(memory.NewTxRunner(store), nopPublisher{}, log)

	stock, err := createUC.Execute(ctx, inventory.CreateStockInput{
		ExternalProductID: uuid.New(),
		ExternalVariantID: uuid.New(),
		WarehouseID:       uuid.New(),
		InitialQuantity:   10,
	})
	require.NoError(t, err)

	expected, err := incomingUC.Expect(ctx, stock.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, expected.QuantityIncoming)
	assert.Equal(t, 10, expected.QuantityAvailable, "lo esperado no toca el disponible")

	movements, err := memory.NewStockMovementRepository(store).ListByStock(ctx, stock.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movements, "anotar lo esperado no genera asiento")

	received, err := incomingUC.Receive(ctx, inventory.ReceiveIncomingInput{
		StockID:             stock.ID,
		Quantity:            30,
		ExternalReferenceID: uuid.New(),
		Note:                "orden de compra recibida",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, received.QuantityAvailable)
	assert.Equal(t, 0, received.QuantityIncoming)
	require.NotNil(t, received.LastRestockedAt)

	movements, err = memory.NewStockMovementRepository(store).ListByStock(ctx, stock.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementPurchase, movements[0].MovementType)
}

func TestStockQueries_NotFound(t *testing.T) {
	store := memory.NewStore()
	queries := inventory.NewStockQueries(
		memory.NewStockRepository(store), memory.NewStockMovementRepository(store))

	_, err := queries.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
}
