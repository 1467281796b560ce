package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"booking-platform/auth/internal/audit"
	auditproducer "booking-platform/auth/internal/audit/producer"
	auditrepo "booking-platform/auth/internal/audit/repository"
	"booking-platform/auth/internal/auth/service"
	"booking-platform/auth/internal/blacklist"
	"booking-platform/auth/internal/config"
	"booking-platform/auth/internal/db"
	"booking-platform/auth/internal/security"
	"booking-platform/auth/internal/server"
	"booking-platform/auth/internal/server/middleware"
	sessionrepo "booking-platform/auth/internal/session/repository"
	telemetryotel "booking-platform/auth/internal/telemetry/otel"
	"booking-platform/auth/internal/token"
	tokenrepo "booking-platform/auth/internal/token/repository"
	userrepo "booking-platform/auth/internal/user/repository"
	userservice "booking-platform/auth/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "auth-service", cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal("telemetry setup", zap.Error(err))
	}
	providers.SetGlobal()

	metrics, err := telemetryotel.NewAuthMetrics(providers.MeterProvider)
	if err != nil {
		logger.Fatal("metrics setup", zap.Error(err))
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Fatal("jwt private key", zap.Error(err))
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Fatal("jwt public key", zap.Error(err))
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	refreshHasher, err := security.NewRefreshHasher(cfg.RefreshTokenPepper)
	if err != nil {
		logger.Fatal("refresh hasher", zap.Error(err))
	}

	var bl blacklist.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer client.Close()
		bl = blacklist.NewRedis(client)
		logger.Info("blacklist backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		bl = blacklist.NewMemory()
		logger.Warn("blacklist is in-process; set REDIS_ADDR when running more than one replica")
	}

	producer, err := auditproducer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.SecurityKafkaTopic, logger)
	if err != nil {
		logger.Fatal("kafka producer", zap.Error(err))
	}
	var auditProducer auditproducer.Producer
	if producer != nil {
		auditProducer = producer
		defer producer.Close()
	}
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(pool), auditProducer, middleware.GetClientIP, logger)

	usersRepo := userrepo.NewPostgresRepository(pool)
	authSvc := service.NewAuthService(service.Deps{
		Verifier:       userservice.NewVerifier(usersRepo, security.NewHasher(cfg.BcryptCost)),
		Users:          usersRepo,
		Tokens:         tokenrepo.NewPostgresRepository(pool),
		Sessions:       sessionrepo.NewPostgresRepository(pool),
		Tx:             service.NewSQLTxRunner(pool),
		Issuer:         token.NewIssuer(tokens, refreshHasher, cfg.RefreshTTL()),
		Access:         tokens,
		Hasher:         refreshHasher,
		Blacklist:      bl,
		Audit:          auditLogger,
		Metrics:        metrics,
		Log:            logger,
		StorageTimeout: cfg.StorageTimeout(),
		SessionCeiling: cfg.SessionCeiling(),
	})

	srv := server.New(authSvc, pool, logger, server.Options{
		CookieDomain: cfg.CookieDomain,
		CookieSecure: cfg.CookieSecure,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	// Let in-flight async security-event emits finish before closing exporters.
	time.Sleep(audit.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
