package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/lemonco/backend/internal/application/catalog"
	manufacturingapp "github.com/lemonco/backend/internal/application/manufacturing"
	stockapp "github.com/lemonco/backend/internal/application/stock"
	tradeapp "github.com/lemonco/backend/internal/application/trade"
	"github.com/lemonco/backend/internal/infrastructure/config"
	"github.com/lemonco/backend/internal/infrastructure/erpclient"
	"github.com/lemonco/backend/internal/infrastructure/logger"
	"github.com/lemonco/backend/internal/infrastructure/postedstore"
	"github.com/lemonco/backend/internal/interfaces/http/handler"
	"github.com/lemonco/backend/internal/interfaces/http/middleware"
	"github.com/lemonco/backend/internal/interfaces/http/router"
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

	log.Info("Starting LemonCo Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// The ERP session is established lazily on first demand. Probe it once
	// at startup so a misconfigured backend shows up in the logs
	// immediately; a failed probe does not abort startup.
	sessions := erpclient.NewSessionManager(cfg.ERP, log)
	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ERP.ConnectionTimeout)
		if sessions.TestConnection(ctx) {
			log.Info("ERP backend reachable")
		} else {
			log.Warn("ERP backend not reachable at startup; will retry on demand")
		}
		cancel()
	}

	// Posted-status store (memory or redis)
	posted, err := postedstore.NewFromConfig(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize posted store", zap.Error(err))
	}
	defer func() {
		if err := posted.Close(); err != nil {
			log.Error("Error closing posted store", zap.Error(err))
		}
	}()

	// Gateways
	assemblies := erpclient.NewAssemblyGateway(sessions)
	adjustments := erpclient.NewAdjustmentGateway(sessions)
	salesOrders := erpclient.NewSalesOrderGateway(sessions)
	masterData := erpclient.NewMasterDataReader(sessions)
	boms := erpclient.NewBomGateway(sessions)

	// Application services
	assemblyService := manufacturingapp.NewAssemblyService(assemblies, posted, log)
	adjustmentService := stockapp.NewAdjustmentService(adjustments, log)
	salesOrderService := tradeapp.NewSalesOrderService(salesOrders, masterData, log)
	itemService := catalogapp.NewItemService(masterData, boms, log)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.Secure(),
	)

	// Routes
	healthHandler := handler.NewHealthHandler(sessions)
	engine.GET("/health", healthHandler.Ready)
	engine.GET("/health/live", healthHandler.Live)
	engine.GET("/health/ready", healthHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewAssemblyHandler(assemblyService)).
		Register(handler.NewStockAdjustmentHandler(adjustmentService)).
		Register(handler.NewSalesOrderHandler(salesOrderService)).
		Register(handler.NewItemHandler(itemService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
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
