// Worker is the token janitor: it periodically deletes expired and revoked
// refresh-token rows and logs aggregate token stats. Run one instance per
// environment; the delete is idempotent so overlap is harmless.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"booking-platform/auth/internal/config"
	"booking-platform/auth/internal/db"
	tokenrepo "booking-platform/auth/internal/token/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	tokens := tokenrepo.NewPostgresRepository(pool)
	interval := cfg.GCInterval()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("worker: shutting down")
		cancel()
	}()

	logger.Info("worker: token janitor started", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, tokens, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker: stopped")
			return
		case <-ticker.C:
			sweep(ctx, tokens, logger)
		}
	}
}

func sweep(ctx context.Context, tokens *tokenrepo.PostgresRepository, logger *zap.Logger) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := tokens.DeleteExpired(sweepCtx, time.Now().UTC())
	if err != nil {
		logger.Error("worker: delete expired tokens", zap.Error(err))
		return
	}
	st, err := tokens.Stats(sweepCtx)
	if err != nil {
		logger.Error("worker: token stats", zap.Error(err))
		return
	}
	logger.Info("worker: sweep complete",
		zap.Int64("deleted", n),
		zap.Int64("active", st.Active),
		zap.Int64("consumed", st.Consumed),
		zap.Int64("revoked", st.Revoked))
}
