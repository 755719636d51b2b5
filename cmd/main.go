package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"catalog-service/internal/api"
	"catalog-service/internal/config"
	"catalog-service/internal/logger"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
)

const serviceName = "CatalogService"

func main() {
	if err := godotenv.Load(); err != nil {
		// The application can still proceed if environment variables are set
		// in other ways.
		log.Println("No .env file found, relying on system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("Starting service",
		zap.String("service", serviceName),
		zap.String("env", cfg.AppEnv),
		zap.String("log_level", cfg.LogLevel),
	)

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		zlog.Fatal("Failed to initialize database connection", zap.Error(err))
	}
	if err := db.PingContext(context.Background()); err != nil {
		zlog.Fatal("Failed to ping database", zap.Error(err))
	}
	zlog.Info("Database connection established")

	if err := store.RunMigrations(db, cfg.MigrationsDir, zlog); err != nil {
		zlog.Fatal("Failed to run database migrations", zap.Error(err))
	}

	dbStore := store.NewPostgresStore(db, zlog)

	// --- Services & API Handlers ---
	categoryService := service.NewCategoryService(dbStore)
	productService := service.NewProductService(dbStore, dbStore)
	httpAPIHandler := api.NewHTTPHandler(categoryService, productService, zlog)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter)
	registerHealthCheck(httpRouter, zlog, db)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		zlog.Info("HTTP server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(zlog, httpServer, dbStore, shutdownComplete)

	<-shutdownComplete
	zlog.Info("Service shutdown sequence finished")
}

func setupBaseMiddleware(router *chi.Mux) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
}

func registerHealthCheck(router *chi.Mux, zlog *zap.Logger, db *sql.DB) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "healthy"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
			zlog.Warn("Health check DB ping failed", zap.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": serviceName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbStatus,
		})
	})
	zlog.Info("HTTP health check registered", zap.String("path", healthPath))
}

func waitForShutdown(
	zlog *zap.Logger,
	httpServer *http.Server,
	dbStore *store.PostgresStore,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	zlog.Info("Received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		zlog.Info("HTTP server gracefully shut down")
	}

	if dbStore != nil {
		if err := dbStore.Close(); err != nil {
			zlog.Warn("Error closing database connection", zap.Error(err))
		}
	}

	zlog.Info("Graceful shutdown sequence completed")
}
