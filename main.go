package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartpyme-api/config"
	"smartpyme-api/handlers"
	"smartpyme-api/logger"
	"smartpyme-api/metrics"
	"smartpyme-api/middleware"
	"smartpyme-api/routes"
	"smartpyme-api/services"
	"smartpyme-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	switch {
	case cfg.GinMode != "":
		gin.SetMode(cfg.GinMode)
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if cfg.IsProduction() && string(cfg.JWTSecret) == config.DefaultJWTSecret {
		log.Fatal("JWT_SECRET must be set in production")
	}
	if cfg.PlatformKey == "" {
		log.Warn("PLATFORM_KEY is empty; platform administration routes are disabled")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("database initialization failed", zap.Error(err))
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	images, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("upload directory unavailable", zap.Error(err))
	}

	tenants := services.NewTenantService(db, log)
	h := handlers.New(cfg, db, handlers.Services{
		Tenants:  tenants,
		Users:    services.NewUserService(db, tenants, log),
		Catalog:  services.NewCatalogService(db, images, log),
		Orders:   services.NewOrderService(db, log),
		Settings: services.NewSettingsService(db),
	})

	r := gin.New()
	r.Use(
		logger.Middleware(log),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(),
	)
	r.MaxMultipartMemory = 8 << 20

	routes.SetupRoutes(r, h, routes.Options{
		JWTSecret:   cfg.JWTSecret,
		PlatformKey: cfg.PlatformKey,
		UploadDir:   images.Root(),
		Tenants:     tenants,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
