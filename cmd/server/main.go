package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	eventapp "github.com/kasso/backend/internal/application/event"
	ledgerapp "github.com/kasso/backend/internal/application/ledger"
	mandatapp "github.com/kasso/backend/internal/application/mandat"
	reportapp "github.com/kasso/backend/internal/application/report"
	walletapp "github.com/kasso/backend/internal/application/wallet"
	domainpayment "github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/infrastructure/auth"
	"github.com/kasso/backend/internal/infrastructure/cache"
	"github.com/kasso/backend/internal/infrastructure/config"
	"github.com/kasso/backend/internal/infrastructure/logger"
	"github.com/kasso/backend/internal/infrastructure/payment"
	"github.com/kasso/backend/internal/infrastructure/persistence"
	"github.com/kasso/backend/internal/interfaces/http/handler"
	"github.com/kasso/backend/internal/interfaces/http/middleware"
	"github.com/kasso/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting kasso backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

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
	ledgerStore := persistence.NewGormLedgerStore(db.DB, log)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	methodRepo := persistence.NewGormMethodRepository(db.DB)
	eventRepo := persistence.NewGormEventRepository(db.DB)
	mandatRepo := persistence.NewGormMandatRepository(db.DB)

	// Payment provider adapters. A provider with missing credentials is
	// skipped: its method row can stay disabled until it is configured.
	httpClient := &http.Client{Timeout: cfg.Payment.ProviderTimeout}
	var adapters []domainpayment.Provider
	if lydia, err := payment.NewLydiaAdapter(cfg.Payment.Lydia, httpClient, log); err == nil {
		adapters = append(adapters, lydia)
	} else {
		log.Warn("Lydia adapter not configured", zap.Error(err))
	}
	if viva, err := payment.NewVivaAdapter(cfg.Payment.Viva, httpClient, log); err == nil {
		adapters = append(adapters, viva)
	} else {
		log.Warn("Viva adapter not configured", zap.Error(err))
	}
	if sumup, err := payment.NewSumUpAdapter(cfg.Payment.SumUp, httpClient, log); err == nil {
		adapters = append(adapters, sumup)
	} else {
		log.Warn("SumUp adapter not configured", zap.Error(err))
	}
	registry := payment.NewProviderRegistry(methodRepo, log, adapters...)

	// Webhook replay store: Redis when configured, otherwise in-memory
	var replayStore shared.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisReplayStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		replayStore = redisStore
		log.Info("Redis replay store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		replayStore = cache.NewMemoryReplayStore()
		log.Info("Using in-memory replay store")
	}
	defer func() {
		if err := replayStore.Close(); err != nil {
			log.Error("Error closing replay store", zap.Error(err))
		}
	}()

	// Application services
	ledgerSvc := ledgerapp.NewLedgerService(ledgerStore, accountRepo, txRepo, log)
	topupSvc := ledgerapp.NewTopUpService(ledgerStore, accountRepo, registry, log).
		WithProviderTimeout(cfg.Payment.ProviderTimeout)
	settlementSvc := ledgerapp.NewSettlementService(ledgerStore, registry, replayStore, log)
	accountSvc := walletapp.NewAccountService(accountRepo, log)
	eventSvc := eventapp.NewEventService(eventRepo, log)
	mandatSvc := mandatapp.NewMandatService(mandatRepo, log)
	eventReportSvc := reportapp.NewEventReportService(eventRepo, txRepo, log)
	mandatReportSvc := reportapp.NewMandatReportService(mandatRepo, log)

	jwtService, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.JWTAuthMiddleware(jwtService),
	)

	systemHandler := handler.NewSystemHandler(db, version, log)
	systemHandler.RegisterProbes(engine)

	router.NewRouter(engine).
		Register(handler.NewAccountHandler(accountSvc, log)).
		Register(handler.NewWalletHandler(ledgerSvc, log)).
		Register(handler.NewTopUpHandler(topupSvc, log)).
		Register(handler.NewWebhookHandler(settlementSvc, log)).
		Register(handler.NewEventHandler(eventSvc, eventReportSvc, log)).
		Register(handler.NewMandatHandler(mandatSvc, mandatReportSvc, log)).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
