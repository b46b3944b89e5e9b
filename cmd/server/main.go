// Package main - punto de entrada del servidor de Tutoria.
//
// Tutoria es un motor de tutoría con IA: un agente docente conversa con el
// estudiante, y un reconciliador traduce las declaraciones del modelo en
// mutaciones del temario personal. El archivista destila cada tema
// completado en un registro pedagógico, sin bloquear nunca la conversación.
//
// La arquitectura sigue Clean Architecture y DDD:
// - Domain: lógica de negocio pura sin dependencias externas
// - Application: orquestación de use cases (Commands/Queries/Tutor)
// - Infrastructure: repositorios, Gemini, Redis, event bus
// - Interface: API REST
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Application layer
	"github.com/AmelieAvondet/tutoria/internal/application/command"
	"github.com/AmelieAvondet/tutoria/internal/application/query"
	"github.com/AmelieAvondet/tutoria/internal/application/tutor"

	// Infrastructure layer
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/external/gemini"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/messaging"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/persistence/postgres"
	"github.com/AmelieAvondet/tutoria/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/AmelieAvondet/tutoria/internal/interface/http"
	"github.com/AmelieAvondet/tutoria/internal/interface/http/handlers"

	// Domain and packages
	"github.com/AmelieAvondet/tutoria/config"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
	"github.com/AmelieAvondet/tutoria/pkg/logger"
)

// appEventBus es lo que main necesita de cualquiera de las dos
// implementaciones del bus.
type appEventBus interface {
	shared.EventBus
	Metrics() *messaging.EventBusMetrics
	Close() error
}

// busMetricsSource adapta las métricas del bus al endpoint /metrics.
type busMetricsSource struct {
	bus appEventBus
}

func (s busMetricsSource) Snapshot() interface{} {
	m := s.bus.Metrics()
	if m == nil {
		return nil
	}
	return m.Snapshot()
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

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
	// 1. CONFIGURACIÓN
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	slog.SetDefault(log)

	log.Info("starting Tutoria server",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRESQL (Supabase)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (opcional: caché de temario, candado del archivista, pub/sub)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache    *redis.Cache
		syllabusCache syllabus.Cache
		dedupeGuard   tutor.DedupeGuard
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.Config{
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
		}

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, running without cache", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureTutorSyllabusCache, nil) {
				syllabusCache = redis.NewSyllabusCache(redisCache)
			}
			dedupeGuard = redis.NewDedupeGuard(redisCache, cfg.Tutor.SummaryLockTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// El modo redis difunde los eventos entre instancias; la entrega local
	// sigue funcionando aunque Redis falle.
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...", "mode", cfg.Tutor.EventBusMode)

	localBusCfg := messaging.DefaultInMemoryEventBusConfig()
	localBusCfg.Logger = log
	localBusCfg.WorkerPoolSize = cfg.Tutor.EventBusWorkers

	var eventBus appEventBus
	if cfg.Tutor.EventBusMode == "redis" && redisCache != nil {
		bridge := redis.NewPubSubBridge(redisCache)
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         bridge,
			LocalBusConfig: localBusCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis event bus: %w", err)
		}
		eventBus = redisBus
	} else {
		eventBus = messaging.NewInMemoryEventBus(localBusCfg)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. CLIENTE GEMINI
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing Gemini client...", "model", cfg.Gemini.Model)

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

	// ─────────────────────────────────────────────────────────────────────────
	// 7. REPOSITORIOS
	// ─────────────────────────────────────────────────────────────────────────
	syllabusRepo := postgres.NewSyllabusRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	chatRepo := postgres.NewChatRepository(dbConn)
	summaryRepo := postgres.NewSummaryRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. CAPA DE APLICACIÓN
	// ─────────────────────────────────────────────────────────────────────────
	reconciler := tutor.NewReconciler(syllabusRepo, syllabusCache, eventBus, log)
	orchestrator := tutor.NewOrchestrator(
		syllabusRepo,
		syllabusCache,
		courseRepo,
		chatRepo,
		geminiClient,
		reconciler,
		eventBus,
		log,
	)

	enrollHandler := command.NewEnrollStudentHandler(syllabusRepo, courseRepo, eventBus, log)
	unenrollHandler := command.NewUnenrollStudentHandler(syllabusRepo, syllabusCache, eventBus, log)
	progressHandler := query.NewGetProgressHandler(syllabusRepo, syllabusCache, log)
	summariesHandler := query.NewGetSummariesHandler(summaryRepo)
	coursesHandler := query.NewListCoursesHandler(courseRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ARCHIVISTA
	// Escucha SummaryRequested en el bus. Cualquier fallo suyo se registra y
	// se traga: nunca toca la respuesta al estudiante.
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Features.IsEnabled(config.FeatureTutorSummarization, nil) {
		archivist := tutor.NewArchivist(chatRepo, summaryRepo, geminiClient, dedupeGuard, eventBus, log)
		if err := eventBus.Subscribe(shared.EventSummaryRequested, archivist.HandleEvent); err != nil {
			return fmt.Errorf("failed to subscribe archivist: %w", err)
		}
		log.Info("archivist subscribed to summary requests")
	} else {
		log.Info("summarization disabled by feature flag")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	healthChecker.AddCheck("model", handlers.NewModelCheck(func() string {
		return geminiClient.BreakerState().String()
	}))

	// ─────────────────────────────────────────────────────────────────────────
	// 11. SERVIDOR HTTP
	// ─────────────────────────────────────────────────────────────────────────
	httpLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	}).With(logger.Component("http"))

	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout

	server := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		Orchestrator:        orchestrator,
		EnrollHandler:       enrollHandler,
		UnenrollHandler:     unenrollHandler,
		GetProgressHandler:  progressHandler,
		GetSummariesHandler: summariesHandler,
		ListCoursesHandler:  coursesHandler,
		Features:            cfg.Features,
		Logger:              httpLog,
		HealthChecker:       healthChecker,
		Metrics:             busMetricsSource{bus: eventBus},
	})

	errCh := server.StartAsync()
	log.Info("Tutoria server is ready", "address", server.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 12. ESPERA Y APAGADO ORDENADO
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}

	log.Info("Tutoria server stopped")
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
