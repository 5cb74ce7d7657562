package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	certificateapp "github.com/ipshield/backend/internal/application/certificate"
	contractapp "github.com/ipshield/backend/internal/application/contract"
	identityapp "github.com/ipshield/backend/internal/application/identity"
	partnerapp "github.com/ipshield/backend/internal/application/partner"
	"github.com/ipshield/backend/internal/infrastructure/auth"
	"github.com/ipshield/backend/internal/infrastructure/cache"
	"github.com/ipshield/backend/internal/infrastructure/config"
	"github.com/ipshield/backend/internal/infrastructure/event"
	"github.com/ipshield/backend/internal/infrastructure/logger"
	"github.com/ipshield/backend/internal/infrastructure/persistence"
	"github.com/ipshield/backend/internal/infrastructure/storage"
	"github.com/ipshield/backend/internal/infrastructure/telemetry"
	"github.com/ipshield/backend/internal/interfaces/http/handler"
	"github.com/ipshield/backend/internal/interfaces/http/middleware"
	"github.com/ipshield/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	ctx := context.Background()

	// Telemetry providers come first so every later component is instrumented
	otelCfg := telemetry.ConfigFrom(cfg.Telemetry, version)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	logLevel, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		logLevel = zapcore.InfoLevel
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, logLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting IPShield backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.DBName), log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider,
		telemetry.DBMetricsConfig{SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Redis backs token revocation and payment idempotency; both fall back to memory
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var storeClient redis.UniversalClient
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		storeClient = redisClient
	}
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(storeClient, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Object storage for certificates
	var objects certificateapp.ObjectStorage = storage.NewDisabledObjectStorage()
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := s3Storage.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Storage bucket check failed", zap.Error(err))
		}
		cancel()
		objects = s3Storage
		log.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Repositories and services
	repos := persistence.NewContractRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	customerService := partnerapp.NewCustomerService(repos.Customers, repos.Contracts, log)
	contractService := contractapp.NewContractService(scope, repos, log)
	contractService.SetIdempotencyStore(idempotencyStore, cfg.Payment.IdempotencyTTL)
	contractService.SetObjectRemover(objects)
	certificateService := certificateapp.NewService(scope, repos, objects, certificateapp.Config{
		MaxFileSize:   cfg.Storage.MaxUploadSize,
		PresignExpiry: cfg.Storage.PresignExpiry,
	}, log)

	if cfg.Bootstrap.AdminUsername != "" {
		created, err := authService.EnsureBootstrapAdmin(ctx, identityapp.BootstrapAdminInput{
			Username:    cfg.Bootstrap.AdminUsername,
			Password:    cfg.Bootstrap.AdminPassword,
			DisplayName: cfg.Bootstrap.AdminDisplayName,
		})
		if err != nil {
			log.Fatal("Failed to seed bootstrap admin", zap.Error(err))
		}
		if created {
			log.Info("Bootstrap admin seeded", zap.String("username", cfg.Bootstrap.AdminUsername))
		}
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)

	completedHandler := event.NewIdempotentHandler(
		contractapp.NewContractCompletedHandler(repos.Contracts, repos.Customers, log),
		idempotencyStore, log)
	eventBus.Subscribe(completedHandler)
	eventBus.Subscribe(event.NewAuditLogHandler(serializer, log))

	paymentMetrics, err := telemetry.NewPaymentMetrics(meterProvider.Meter("contracts"))
	if err != nil {
		log.Fatal("Failed to create payment metrics", zap.Error(err))
	}
	eventBus.Subscribe(paymentMetrics)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	contractService.SetEventPublisher(eventBus)
	customerService.SetEventPublisher(eventBus)
	log.Info("Event handlers registered",
		zap.Strings("contract_completed_events", completedHandler.EventTypes()),
		zap.Strings("payment_metric_events", paymentMetrics.EventTypes()),
		zap.Strings("registered_events", serializer.RegisteredTypes()),
	)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.Secure(cfg.App.Env == "production"),
		middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	checks := map[string]handler.ReadinessCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	router.Mount(engine, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Customer:    handler.NewCustomerHandler(customerService),
		Contract:    handler.NewContractHandler(contractService),
		Certificate: handler.NewCertificateHandler(certificateService),
		System:      handler.NewSystemHandler(version, checks),
	}, router.Guards{
		Authenticated: []gin.HandlerFunc{
			middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
				JWTService:     jwtService,
				TokenBlacklist: blacklist,
				Logger:         log,
			}),
			middleware.TracingAttributeInjector(),
		},
		Login: []gin.HandlerFunc{middleware.RateLimit(loginLimiter)},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry provider", zap.String("provider", name), zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
