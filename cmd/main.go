package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	_ "loan-servicing/docs"
	"loan-servicing/internal/api"
	"loan-servicing/internal/api/handler"
	"loan-servicing/internal/batch"
	"loan-servicing/internal/config"
	"loan-servicing/internal/domain/loan"
	"loan-servicing/internal/event"
	"loan-servicing/internal/infrastructure/cache"
	"loan-servicing/internal/infrastructure/database/postgres"
	"loan-servicing/internal/infrastructure/logging"
	"loan-servicing/internal/infrastructure/upstream"
)

const sweepJobName = "InstallmentStatusSweep"

// @title Loan Servicing API
// @version 1.0
// @description Derives loan payment schedules and installment statuses from the loan API.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
func main() {
	cfg, logger := initializeApp()

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	dbPool := initializeDatabase(appCtx, cfg, logger)
	defer closeDatabase(dbPool, logger)
	redisClient := initializeRedisClient(cfg, logger)
	rabbitMQConn, err := setupRabbitMQ(cfg, logger)
	if err != nil {
		logger.Warn("Continuing without RabbitMQ; the status sweep is disabled", "error", err)
	}

	scheduleService, snapshotRepo := initializeServices(cfg, dbPool, redisClient, logger)
	cronScheduler := startBatchJobs(cfg, scheduleService, snapshotRepo, rabbitMQConn, logger)

	router := api.SetupRouter(appCtx, api.Dependencies{
		Schedules:    scheduleService,
		Transitions:  snapshotRepo,
		HealthChecks: buildHealthChecks(dbPool, redisClient),
	}, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, rabbitMQConn, redisClient, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializeServices(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, logger *slog.Logger) (loan.ScheduleService, *postgres.SnapshotRepository) {
	logger.Info("Initializing application components...")

	loanAPI, err := upstream.NewClient(cfg.Upstream, logger)
	if err != nil {
		logger.Error("Failed to initialize loan API client", "error", err)
		os.Exit(1)
	}

	scheduleService := loan.NewScheduleService(loanAPI, newLoanCache(cfg, redisClient, logger), time.Now, loanAPI.Location(), logger)
	snapshotRepo := postgres.NewSnapshotRepository(dbPool, logger)

	return scheduleService, snapshotRepo
}

// newLoanCache returns a nil interface, not a nil *LoanCache, when caching is off.
func newLoanCache(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) loan.Cache {
	if redisClient == nil {
		logger.Info("Loan cache disabled.")
		return nil
	}
	return cache.NewLoanCache(redisClient, cfg.Redis.LoanTTL, logger)
}

func buildHealthChecks(dbPool *pgxpool.Pool, redisClient *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{}
	if dbPool != nil {
		checks["database"] = dbPool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func startBatchJobs(cfg *config.Config, scheduleService loan.ScheduleService, snapshots loan.SnapshotRepository,
	rabbitConn *amqp.Connection, logger *slog.Logger) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")

	if rabbitConn == nil {
		logger.Warn("No RabbitMQ connection; status sweep not scheduled.")
		return nil
	}

	publisher, err := event.NewRabbitMQEventPublisher(rabbitConn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize event publisher; status sweep not scheduled", "error", err)
		return nil
	}

	sweepJob := batch.NewStatusSweepJob(scheduleService, snapshots, publisher, cfg.Batch.Workers, logger)

	c, err := batch.NewScheduler(cfg.Batch.SweepSchedule, cfg.Batch.SweepTimeout, sweepJobName, sweepJob, logger)
	if err != nil {
		logger.Error("Failed to schedule status sweep", "schedule", cfg.Batch.SweepSchedule, slog.Any("error", err))
		return nil
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, rabbitConn *amqp.Connection, redisClient *redis.Client,
	shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason, err := waitForShutdownTrigger(shutdownChan, serverErrors, logger)
	if err != nil {
		os.Exit(1)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	stopCronScheduler(cronScheduler, logger)
	shutdownHTTPServer(srv, serverErrors, logger)
	closeRabbitMQConnection(rabbitConn, logger)
	closeRedisClient(redisClient, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) (string, error) {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String(), nil
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			return "", err
		}
		logger.Info("Server goroutine finished before signal.")
		return "server exited", nil
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	if cronScheduler == nil {
		return
	}
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	switch {
	case rabbitConn == nil:
		logger.Info("RabbitMQ connection was not established, skipping close.")
	case rabbitConn.IsClosed():
		logger.Info("RabbitMQ connection already closed, skipping close.")
	default:
		logger.Info("Closing RabbitMQ connection...")
		if err := rabbitConn.Close(); err != nil {
			logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
			return
		}
		logger.Info("RabbitMQ connection closed.")
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}

func initializeRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled by configuration.")
		return nil
	}
	logger.Info("Initializing Redis client...")
	if cfg.Redis.Addr == "" {
		logger.Error("Redis address (addr) is not configured.")
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", "error", err, "addr", cfg.Redis.Addr)
		_ = rdb.Close()
		os.Exit(1)
	}

	logger.Info("Redis client connected successfully.", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb
}

func closeRedisClient(redisClient *redis.Client, logger *slog.Logger) {
	if redisClient == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
		return
	}
	logger.Info("Redis client connection closed.")
}

// connectRabbitMQ retries with a linearly growing backoff.
func connectRabbitMQ(uri string, attempts int, backoff time.Duration, logger *slog.Logger) (*amqp.Connection, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")
			go watchRabbitMQConnection(conn, logger)
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)
		if i < attempts {
			time.Sleep(time.Duration(i) * backoff)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

func watchRabbitMQConnection(conn *amqp.Connection, logger *slog.Logger) {
	blockChan := conn.NotifyBlocked(make(chan amqp.Blocking, 1))
	closeChan := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case b, ok := <-blockChan:
			if !ok {
				return
			}
			if b.Active {
				logger.Warn("RabbitMQ connection blocked", "reason", b.Reason)
			} else {
				logger.Info("RabbitMQ connection unblocked")
			}
		case e, ok := <-closeChan:
			if ok && e != nil {
				logger.Error("RabbitMQ connection closed", slog.Any("error", e))
			}
			return
		}
	}
}

func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL is not configured")
	}
	return connectRabbitMQ(cfg.RabbitMQ.URL, 5, 2*time.Second, logger)
}
