package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	procurementapp "github.com/stockcore/backend/internal/application/procurement"
	replenishmentapp "github.com/stockcore/backend/internal/application/replenishment"
	stockapp "github.com/stockcore/backend/internal/application/stock"
	webhookapp "github.com/stockcore/backend/internal/application/webhook"
	workflowapp "github.com/stockcore/backend/internal/application/workflow"
	"github.com/stockcore/backend/internal/infrastructure/audit"
	"github.com/stockcore/backend/internal/infrastructure/config"
	"github.com/stockcore/backend/internal/infrastructure/event"
	"github.com/stockcore/backend/internal/infrastructure/logger"
	"github.com/stockcore/backend/internal/infrastructure/persistence"
	webhookqueue "github.com/stockcore/backend/internal/infrastructure/webhook"
	"github.com/stockcore/backend/internal/interfaces/http/handler"
	"github.com/stockcore/backend/internal/interfaces/http/middleware"
	"github.com/stockcore/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting StockCore",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	stockItemRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Webhook delivery queue and subscription fanout
	queue := webhookqueue.NewDeliveryQueue(webhookqueue.Config{
		MaxRetries:     cfg.Webhook.MaxRetries,
		RequestTimeout: cfg.Webhook.RequestTimeout,
		InterJobDelay:  cfg.Webhook.InterJobDelay,
		BackoffBase:    cfg.Webhook.BackoffBase,
	}, log)
	fanout := webhookapp.NewFanout(subscriptionRepo, queue, log)
	eventBus.Subscribe(fanout)

	// Replenishment engine
	replenishment := replenishmentapp.NewService(
		stockItemRepo,
		purchaseOrderRepo,
		taskRepo,
		replenishmentapp.Policy{
			RefillMultiplier: decimal.NewFromFloat(cfg.Replenishment.RefillMultiplier),
			ReviewDueIn:      cfg.Replenishment.ReviewDueIn,
		},
		log,
	)
	replenishment.SetEventPublisher(eventBus)

	// Stock ledger services
	movementService := stockapp.NewMovementService(movementRepo, supplierRepo, contactRepo, txScope, log)
	movementService.SetReplenishmentChecker(replenishment)
	movementService.SetEventPublisher(eventBus)
	movementService.SetAuditRecorder(audit.NewZapRecorder(log))

	stockItemService := stockapp.NewStockItemService(stockItemRepo, movementService, log)
	stockItemService.SetReplenishmentChecker(replenishment)

	orderService := procurementapp.NewOrderService(purchaseOrderRepo)
	taskService := workflowapp.NewTaskService(taskRepo)

	// Workflow dispatcher with the built-in automations
	dispatcher := workflowapp.NewDispatcher(log)
	dispatcher.Register(workflowapp.NewDealWonAction(quoteRepo, taskRepo, log))
	dispatcher.Register(workflowapp.NewInvoiceOverdueAction(taskRepo, contactRepo, log))
	dispatcher.Register(workflowapp.NewEmployeeCreatedAction(taskRepo, log))
	dispatcher.Register(workflowapp.NewStockLowAction(log))

	// Bridge internal domain events into the dispatcher so stock.low
	// raised by the replenishment engine reaches the automations too
	eventBus.Subscribe(workflowapp.NewEventBridge(dispatcher))

	// Start the webhook consumer
	queueCtx, queueCancel := context.WithCancel(context.Background())
	defer queueCancel()
	queue.Start(queueCtx)
	defer queue.Stop()

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tenant())

	systemHandler := handler.NewSystemHandler(db, queue)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine)
	r.Register(handler.NewStockItemHandler(stockItemService)).
		Register(handler.NewStockMovementHandler(movementService)).
		Register(handler.NewPurchaseOrderHandler(orderService)).
		Register(handler.NewTaskHandler(taskService)).
		Register(handler.NewWorkflowHandler(dispatcher)).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting requests, then drain the
	// webhook consumer before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
