// Package main - punto de entrada del worker del archivista de Tutoria.
//
// El worker escucha los eventos SummaryRequested difundidos por Redis
// Pub/Sub y ejecuta el archivista fuera del proceso del API. Con
// TUTOR_EVENT_BUS=redis, el servidor publica el disparo al completar un
// tema y este proceso absorbe la llamada lenta al modelo; el candado SET NX
// en Redis garantiza que servidor y worker no resuman el mismo tema dos
// veces.
//
// Todo fallo del archivista se registra y se descarta: un resumen perdido
// es una pérdida tolerable, nunca una causa de reintento.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AmelieAvondet/tutoria/config"
	"github.com/AmelieAvondet/tutoria/internal/application/tutor"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/external/gemini"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/messaging"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/persistence/postgres"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/persistence/redis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURACIÓN Y LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	slog.SetDefault(log)

	log.Info("starting Tutoria archivist worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
	)

	// El worker solo tiene sentido con el bus distribuido.
	if cfg.Redis.Disabled {
		return fmt.Errorf("archivist worker requires Redis (REDIS_DISABLED must be false)")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS: candado del archivista y puente pub/sub
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")
	redisCache, err := redis.NewCache(redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolTimeout:  cfg.Redis.DialTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisCache.Close()

	dedupeGuard := redis.NewDedupeGuard(redisCache, cfg.Tutor.SummaryLockTTL)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS DISTRIBUIDO
	// ─────────────────────────────────────────────────────────────────────────
	localBusCfg := messaging.DefaultInMemoryEventBusConfig()
	localBusCfg.Logger = log
	localBusCfg.WorkerPoolSize = cfg.Tutor.EventBusWorkers

	eventBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
		Client:         redis.NewPubSubBridge(redisCache),
		LocalBusConfig: localBusCfg,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis event bus: %w", err)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CLIENTE GEMINI Y ARCHIVISTA
	// ─────────────────────────────────────────────────────────────────────────
	geminiCfg := gemini.DefaultClientConfig(cfg.Gemini.APIKey)
	geminiCfg.Model = cfg.Gemini.Model
	geminiCfg.Timeout = cfg.Gemini.RequestTimeout
	geminiCfg.RateLimiterConfig.RequestsPerSecond = cfg.Gemini.RateLimit
	geminiCfg.RateLimiterConfig.BurstSize = cfg.Gemini.RateLimitBurst
	geminiCfg.Logger = log

	geminiClient, err := gemini.NewClient(ctx, geminiCfg)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}

	chatRepo := postgres.NewChatRepository(dbConn)
	summaryRepo := postgres.NewSummaryRepository(dbConn)

	archivist := tutor.NewArchivist(chatRepo, summaryRepo, geminiClient, dedupeGuard, eventBus, log)
	if err := eventBus.Subscribe(shared.EventSummaryRequested, archivist.HandleEvent); err != nil {
		return fmt.Errorf("failed to subscribe archivist: %w", err)
	}

	log.Info("archivist worker is ready, waiting for summary requests")

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ESPERA Y APAGADO ORDENADO
	// ─────────────────────────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutdown signal received")
	log.Info("archivist worker stopped")
	return nil
}

// setupLogger construye el logger slog según la configuración.
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
