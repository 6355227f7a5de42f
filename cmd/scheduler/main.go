package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/app"
	"github.com/Freeeeeet/center_scheduler/internal/config"
	"github.com/Freeeeeet/center_scheduler/internal/controller"
	"github.com/Freeeeeet/center_scheduler/internal/controller/common"
	"github.com/Freeeeeet/center_scheduler/internal/lock"
	"github.com/Freeeeeet/center_scheduler/internal/notify"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"github.com/Freeeeeet/center_scheduler/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting center scheduler",
		zap.String("environment", cfg.Environment),
		zap.String("address", cfg.Address),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if cfg.DBAutoMigrate {
		if err := runMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	store := repository.NewPostgresStore(pool)

	var locker lock.Locker
	if cfg.Redis.Addr != "" {
		redisLock, err := lock.NewRedisLock(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to init redis lock", zap.Error(err))
		}
		defer closeWithLog(logger, "redis lock", redisLock.Close)
		locker = redisLock
		logger.Info("Booking lock enabled", zap.String("redis", cfg.Redis.Addr))
	}

	var notifiers notify.Multi
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Fatal("Failed to init rabbitmq publisher", zap.Error(err))
		}
		defer closeWithLog(logger, "rabbitmq publisher", publisher.Close)
		notifiers = append(notifiers, publisher)
	}
	if cfg.TelegramToken != "" {
		b, err := notify.NewBot(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to init telegram bot", zap.Error(err))
		}
		notifiers = append(notifiers, notify.NewTelegramNotifier(b, logger))
	}

	directoryService := service.NewDirectoryService(store, logger)
	slotService := service.NewSlotService(store, logger)
	lessonService := service.NewLessonService(store, logger)
	bookingService := service.NewBookingService(store, locker, notifiers, service.BookingConfig{
		LockTTL:       cfg.LockTTL,
		LockWait:      cfg.LockWait,
		NotifyTimeout: cfg.NotifyTimeout,
	}, logger)
	queryService := service.NewQueryService(store, common.RenderDaySchedule, logger)

	scheduler := app.NewScheduler(lessonService, cfg.LessonReportInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := controller.NewRouter(logger, controller.Deps{
		Booking:        bookingService,
		Lessons:        lessonService,
		Catalog:        slotService,
		Directory:      directoryService,
		Queries:        queryService,
		Ping:           pool.Ping,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down HTTP server", zap.Duration("timeout", cfg.ShutdownTimeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Shutdown finished")
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer closeWithLog(logger, "migrator", migrator.Close)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	return migrator.Run(ctx)
}

func closeWithLog(logger *zap.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("Failed to close "+name, zap.Error(err))
		return
	}
	logger.Info("Closed " + name)
}
