package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/events"
	"github.com/jhoicas/Almacen-api/internal/application/queue"
	"github.com/jhoicas/Almacen-api/internal/application/warehouse"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/bus"
	infrakafka "github.com/jhoicas/Almacen-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memqueue"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// jobQueue une el puerto de encolado con el arranque del consumidor.
type jobQueue interface {
	queue.Enqueuer
	Start(ctx context.Context)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	orderRepo := postgres.NewOrderRepository(pool)
	lineRepo := postgres.NewOrderLineRepository(pool)
	resRepo := postgres.NewReservationRepository(pool)
	invRepo := postgres.NewInventoryRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// La cola se construye antes que los casos de uso (que la necesitan como
	// puerto) y el motor de emparejamiento después (la cola lo invoca). El
	// handler captura la variable, asignada antes de arrancar los workers.
	var pairingUC *warehouse.PairingUseCase
	handler := func(ctx context.Context, job queue.Job) error {
		switch job.Type {
		case queue.JobPairInventory:
			return pairingUC.PairInventory(ctx, job.InventoryID)
		case queue.JobPairOrderLine:
			return pairingUC.PairOrderLine(ctx, job.OrderLineID)
		default:
			log.Warn().Str("type", string(job.Type)).Msg("tipo de trabajo desconocido, descartado")
			return nil
		}
	}

	var jobs jobQueue
	switch cfg.Queue.Driver {
	case "kafka":
		jobs = infrakafka.New(infrakafka.Config{
			Brokers:     cfg.Queue.Brokers,
			Topic:       cfg.Queue.Topic,
			GroupID:     cfg.Queue.GroupID,
			MaxAttempts: cfg.Queue.MaxAttempts,
		}, handler, warehouse.IsTransient)
	default:
		jobs = memqueue.New(memqueue.Config{
			Workers:     cfg.Queue.Workers,
			Buffer:      cfg.Queue.Buffer,
			MaxAttempts: cfg.Queue.MaxAttempts,
		}, handler, warehouse.IsTransient)
	}

	eventBus := bus.New()

	orderUC := warehouse.NewOrderUseCase(txRunner, orderRepo, lineRepo, resRepo, eventBus, jobs)
	lineUC := warehouse.NewLineUseCase(txRunner, lineRepo, resRepo, invRepo, locationRepo, eventBus, jobs)
	inventoryUC := warehouse.NewInventoryUseCase(invRepo, resRepo, locationRepo, eventBus, jobs)
	locationUC := warehouse.NewLocationUseCase(locationRepo)
	pairingUC = warehouse.NewPairingUseCase(txRunner, orderRepo, lineRepo, orderUC)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Cada línea nueva dispara un intento de emparejamiento con stock libre.
	eventBus.Subscribe(events.NameOrderLineCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.OrderLineCreated)
		if !ok {
			return
		}
		job := queue.Job{Type: queue.JobPairOrderLine, OrderLineID: ev.Line.ID}
		if err := jobs.Enqueue(ctx, job); err != nil {
			log.Error().Err(err).Str("line_id", ev.Line.ID).Msg("encolando emparejamiento de línea")
		}
	})
	eventBus.Subscribe(events.NameOrderLineReplaced, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.OrderLineReplaced)
		if !ok {
			return
		}
		log.Info().
			Str("order_id", ev.Order.ID).
			Str("inventory_id", ev.Inventory.ID).
			Str("line_id", ev.Line.ID).
			Msg("línea reemplazada")
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	jobs.Start(workerCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:     orderUC,
		LineUC:      lineUC,
		InventoryUC: inventoryUC,
		LocationUC:  locationUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	stopWorkers()
	if mq, ok := jobs.(*memqueue.Queue); ok {
		mq.Wait()
	}
	if kq, ok := jobs.(*infrakafka.Queue); ok {
		if err := kq.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del productor kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}
