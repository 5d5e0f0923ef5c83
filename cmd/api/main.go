package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/inventory-engine/internal/application/inventory"
	"github.com/tu-usuario/inventory-engine/internal/application/reservation"
	"github.com/tu-usuario/inventory-engine/internal/domain/event"
	"github.com/tu-usuario/inventory-engine/internal/domain/repository"
	"github.com/tu-usuario/inventory-engine/internal/infrastructure/memory"
	"github.com/tu-usuario/inventory-engine/internal/infrastructure/postgres"
	"github.com/tu-usuario/inventory-engine/internal/infrastructure/rabbitmq"
	"github.com/tu-usuario/inventory-engine/internal/interfaces/events"
	httpRouter "github.com/tu-usuario/inventory-engine/internal/interfaces/http"
	"github.com/tu-usuario/inventory-engine/pkg/config"
	"github.com/tu-usuario/inventory-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL, o el adaptador en memoria con DB_HOST=memory
	// (desarrollo local sin base de datos; el estado se pierde al apagar).
	var (
		txRunner        inventory.TxRunner
		stockRepo       repository.StockRepository
		reservationRepo repository.StockReservationRepository
		movementRepo    repository.StockMovementRepository
	)
	if cfg.DB.Host == "memory" && cfg.DB.DatabaseURL == "" {
		log.Warn().Msg("persistencia en memoria: solo para desarrollo")
		store := memory.NewStore()
		txRunner = memory.NewTxRunner(store)
		stockRepo = memory.NewStockRepository(store)
		reservationRepo = memory.NewStockReservationRepository(store)
		movementRepo = memory.NewStockMovementRepository(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		stockRepo = postgres.NewStockRepository(pool)
		reservationRepo = postgres.NewStockReservationRepository(pool)
		movementRepo = postgres.NewStockMovementRepository(pool)
	}

	// Eventos: RabbitMQ si hay broker configurado, si no solo log.
	var publisher inventory.EventPublisher
	if cfg.AMQP.Enabled() {
		amqpPublisher, err := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		log.Warn().Msg("AMQP_URL vacío: los eventos de dominio solo se registran en el log")
		publisher = logPublisher{log: log}
	}

	createStockUC := inventory.NewCreateStockUseCase(txRunner, publisher, log)
	adjustStockUC := inventory.NewAdjustStockUseCase(txRunner, publisher, log)
	incomingUC := inventory.NewIncomingUseCase(txRunner, publisher, log)
	stockQueries := inventory.NewStockQueries(stockRepo, movementRepo)
	manager := reservation.NewManager(txRunner, publisher, log, cfg.Inventory.ReservationTTL)
	resQueries := reservation.NewQueries(reservationRepo)

	// Sweeper: libera reservas vencidas en segundo plano.
	sweeper := reservation.NewExpirySweeper(reservationRepo, manager, log,
		cfg.Inventory.SweepInterval, cfg.Inventory.SweepBatchSize)
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	// Consumidor de eventos de órdenes: confirma y libera reservas según el
	// desenlace del checkout.
	if cfg.AMQP.Enabled() {
		consumer, err := rabbitmq.NewConsumer(cfg.AMQP.URL, cfg.AMQP.OrderExchange,
			cfg.AMQP.OrderQueue, []string{"order.confirmed", "order.cancelled", "cart.expired"},
			log.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("consumidor de órdenes")
		}
		defer consumer.Close()
		orderConsumer := events.NewOrderConsumer(manager, log)
		go func() {
			if err := consumer.Consume(sweepCtx, func(routingKey string, body []byte) error {
				return orderConsumer.Handle(sweepCtx, routingKey, body)
			}); err != nil {
				log.Error().Err(err).Msg("consumo de eventos de órdenes finalizado")
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateStock:  createStockUC,
		AdjustStock:  adjustStockUC,
		Incoming:     incomingUC,
		StockQueries: stockQueries,
		Reservations: manager,
		ResQueries:   resQueries,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// logPublisher publicador de respaldo cuando no hay broker: deja constancia
// del evento en el log y nada más.
type logPublisher struct {
	log *logger.Logger
}

func (p logPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	for _, e := range evts {
		p.log.Info().
			Str("event", e.EventType()).
			Str("stock_id", e.AggregateID().String()).
			Time("occurred_at", e.OccurredAt()).
			Msg("evento de dominio (sin broker)")
	}
	return nil
}
