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

	scanningapp "github.com/shopadmin/scan-gateway/internal/application/scanning"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/cache"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/config"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/event"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/inventoryapi"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/logger"
	"github.com/shopadmin/scan-gateway/internal/infrastructure/sessionstore"
	"github.com/shopadmin/scan-gateway/internal/interfaces/http/dto"
	"github.com/shopadmin/scan-gateway/internal/interfaces/http/handler"
	"github.com/shopadmin/scan-gateway/internal/interfaces/http/middleware"
	"github.com/shopadmin/scan-gateway/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting scan gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Summary cache (redis or in-memory per config)
	summaryCache, err := cache.NewSummaryCache(cfg)
	if err != nil {
		log.Fatal("failed to initialize summary cache", zap.Error(err))
	}
	defer func() { _ = summaryCache.Close() }()

	// Upstream inventory service client
	gateway := inventoryapi.NewClient(&cfg.InventoryAPI, log.Named("inventoryapi"))

	// Session store with idle eviction
	store := sessionstore.NewInMemoryStore(
		cfg.Session.IdleExpiration,
		cfg.Session.SweepInterval,
		log.Named("sessionstore"),
	)
	store.Start(ctx)
	defer store.Stop()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log.Named("eventbus"))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	// Application services
	sessionService := scanningapp.NewSessionService(store, gateway, summaryCache, eventBus, log.Named("session"))
	eventBus.Subscribe(scanningapp.NewSummaryInvalidationHandler(summaryCache, log.Named("invalidation")))

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := dto.RegisterValidations(); err != nil {
		log.Fatal("failed to register validations", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log.Named("http")),
		logger.Recovery(log.Named("http")),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodySizeLimit(1<<20),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(cfg.App.Name, cfg.App.Env))
	r.Register(handler.NewScanSessionHandler(sessionService))
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()
	log.Info("server listening", zap.String("addr", server.Addr))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}

	log.Info("stopped")
}
