package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bullionwatch/collector/internal/adapters/cache"
	"github.com/bullionwatch/collector/internal/adapters/quoteapi"
	"github.com/bullionwatch/collector/internal/adapters/storage"
	"github.com/bullionwatch/collector/internal/adapters/web"
	"github.com/bullionwatch/collector/internal/config"
	"github.com/bullionwatch/collector/internal/ports"
	"github.com/bullionwatch/collector/internal/services"
	"github.com/bullionwatch/collector/pkg/logger"
)

func main() {
	log, cleanup := logger.Setup()
	defer cleanup()

	if err := run(log); err != nil {
		log.Error("application error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	log.Info("rates collector starting")

	loadDotEnv(log)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// PostgreSQL: process-wide pool, initialized once, no teardown
	// required before process exit beyond the deferred Close.
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Info("waiting for PostgreSQL", "attempt", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("PostgreSQL is not responding: %w", err)
	}

	if err := storage.InitDB(db); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	store := storage.NewPostgresStore(db)

	redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.CacheTTL)
	defer redisCache.Close()
	if err := redisCache.Ping(context.Background()); err != nil {
		// The cache is an accelerator, not the record of truth.
		log.Warn("redis not reachable, continuing without cache", "error", err)
	}

	var history ports.HistoryRecorder
	if cfg.HistoryDir != "" {
		history = storage.NewCSVHistoryRecorder(cfg.HistoryDir)
		log.Info("history recording enabled", "dir", cfg.HistoryDir)
	}

	provider := quoteapi.NewClient(cfg.QuoteAPIBaseURL, cfg.QuoteAPIKey, nil)

	ingest := services.NewIngestService(provider, store, redisCache, history, cfg, log)
	if err := ingest.Start(); err != nil {
		return fmt.Errorf("failed to start ingestion: %w", err)
	}

	router := web.NewRouter(store, redisCache, log)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("read API listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	shutdownComplete := make(chan error, 1)
	go func() {
		shutdownComplete <- ingest.Stop()
	}()

	select {
	case err := <-shutdownComplete:
		if err != nil {
			log.Error("shutdown completed with errors", "error", err)
			return err
		}
		log.Info("shutdown complete")
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// loadDotEnv loads a .env file when present (supports debug runs from
// cmd/collector/ and runs from the project root).
func loadDotEnv(log *slog.Logger) {
	envPaths := []string{
		".env",
		"../../.env",
		"../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err == nil {
				log.Info("loaded .env", "path", envPath)
				return
			}
		}
	}
	log.Info(".env not found, using system environment")
}
