package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mnb-billing/mnb-pos/internal/analytics"
	"github.com/mnb-billing/mnb-pos/internal/app"
	"github.com/mnb-billing/mnb-pos/internal/auth"
	"github.com/mnb-billing/mnb-pos/internal/billing"
	"github.com/mnb-billing/mnb-pos/internal/integration"
	"github.com/mnb-billing/mnb-pos/internal/masterdata/products"
	"github.com/mnb-billing/mnb-pos/internal/masterdata/suppliers"
	"github.com/mnb-billing/mnb-pos/internal/observability"
	"github.com/mnb-billing/mnb-pos/internal/platform/cache"
	"github.com/mnb-billing/mnb-pos/internal/platform/db"
	"github.com/mnb-billing/mnb-pos/internal/procurement"
	"github.com/mnb-billing/mnb-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	redisClient, err = cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, report cache and jobs disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authMiddleware := auth.NewMiddleware(tokens)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens)
	created, err := authService.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword, "Administrator", auth.RoleAdmin)
	if err != nil {
		logger.Error("seed admin user", slog.Any("error", err))
		os.Exit(1)
	}
	if created {
		logger.Info("default admin user created", slog.String("username", cfg.AdminUsername))
	}

	metrics := observability.NewMetrics()

	analyticsCache := analytics.NewCache(redisClient, cfg.StatsCacheTTL, logger)
	analyticsService := analytics.NewService(analytics.NewRepository(dbpool), analyticsCache, cfg.LowStockThreshold)
	analyticsCache.ListenForInvalidation(ctx, func(version int64) {
		logger.Debug("stats cache version bumped", slog.Int64("version", version))
	})

	var (
		queue      integration.JobEnqueuer
		jobHandler *jobs.Handler
	)
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		queue = jobClient

		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	} else {
		jobHandler = jobs.NewHandler(nil, logger)
	}

	hooks := integration.NewHooks(analyticsService, queue, metrics, logger)

	productService := products.NewService(products.NewRepository(dbpool))
	supplierService := suppliers.NewService(suppliers.NewRepository(dbpool))
	billingService := billing.NewService(billing.NewRepository(dbpool), hooks)
	procurementService := procurement.NewService(procurement.NewRepository(dbpool), hooks)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Auth:               authMiddleware,
		AuthHandler:        auth.NewHandler(logger, authService, authMiddleware),
		ProductHandler:     products.NewHandler(logger, productService),
		SupplierHandler:    suppliers.NewHandler(logger, supplierService),
		BillingHandler:     billing.NewHandler(logger, billingService),
		ProcurementHandler: procurement.NewHandler(logger, procurementService),
		AnalyticsHandler:   analytics.NewHandler(logger, analyticsService),
		JobHandler:         jobHandler,
		Metrics:            metrics,
		Database:           dbpool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
