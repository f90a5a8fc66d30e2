// cmd/notification-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"attendance-notifier/internal/common/config"
	"attendance-notifier/internal/common/database"
	"attendance-notifier/internal/common/logger"
	"attendance-notifier/internal/common/observability"
	"attendance-notifier/internal/notifier"
	"attendance-notifier/internal/settings"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Settings gateway: Postgres store behind a Redis read-through cache ---
	store := settings.NewPostgresStore(pg.DB, cfg.Settings.Table, log)
	gateway := settings.NewCache(store, rdb.Client, config.GetDuration(cfg.Settings.CacheTTL), log)

	// --- Notification engine ---
	loader := notifier.NewLoader(gateway, cfg.Mail, log)
	manager := notifier.NewManager(loader, log)
	dispatcher := notifier.NewDispatcher(notifier.Dependencies{
		Resolver:      notifier.NewResolver(gateway, log),
		Loader:        loader,
		Manager:       manager,
		Invalidator:   gateway,
		Observability: obs,
		Logger:        log,
	})

	if dispatcher.TestConnection(ctx) {
		zapLog.Info("Mail server connection verified")
	} else {
		// Startup proceeds: the transport rebuilds on the next Refresh once
		// an administrator fixes the mail settings.
		zapLog.Warn("Mail server unreachable at startup, deliveries will fail until settings are corrected")
	}

	// --- HTTP API + metrics ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	registerAPI(mux, dispatcher, log)

	addr := cfg.Metrics.Address
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down notification service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Notification service stopped")
}
