package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/vantage-erp/vantage-erp/internal/app"
	"github.com/vantage-erp/vantage-erp/internal/catalog"
	"github.com/vantage-erp/vantage-erp/internal/forecast"
	"github.com/vantage-erp/vantage-erp/internal/observability"
	"github.com/vantage-erp/vantage-erp/internal/platform/db"
	"github.com/vantage-erp/vantage-erp/internal/purchasing"
	"github.com/vantage-erp/vantage-erp/internal/receiving"
	"github.com/vantage-erp/vantage-erp/internal/reorder"
	"github.com/vantage-erp/vantage-erp/internal/sales"
	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	clock := shared.SystemClock()
	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)

	forecastRepo := forecast.NewRepository(dbpool)
	forecastCache := forecast.NewCache(redisClient, cfg.CacheTTL)
	forecastService := forecast.NewService(forecastRepo, catalogService, forecastCache, clock, logger, metrics)
	forecastHandler := forecast.NewHandler(logger, forecastService)

	purchasingRepo := purchasing.NewRepository(dbpool)
	purchasingService := purchasing.NewService(purchasingRepo, forecastService, clock, logger)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService)

	reorderService := reorder.NewService(forecastService, catalogService, purchasingService, clock)
	reorderHandler := reorder.NewHandler(logger, reorderService)

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(salesRepo, forecastService, logger)
	salesHandler := sales.NewHandler(logger, salesService)

	receivingRepo := receiving.NewRepository(dbpool)
	receivingService := receiving.NewService(receivingRepo, forecastService, logger)
	receivingHandler := receiving.NewHandler(logger, receivingService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(jobClient, inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ForecastHandler:   forecastHandler,
		ReorderHandler:    reorderHandler,
		SalesHandler:      salesHandler,
		PurchasingHandler: purchasingHandler,
		ReceivingHandler:  receivingHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
