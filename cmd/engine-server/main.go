// cmd/engine-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yojana-engine/internal/catalog"
	"yojana-engine/internal/common/config"
	"yojana-engine/internal/common/database"
	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/common/observability"
	"yojana-engine/internal/engine"
	"yojana-engine/internal/engine/evaluator"
	"yojana-engine/internal/engine/ranker"
	"yojana-engine/internal/reasoning"
	"yojana-engine/internal/transport/rest"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting eligibility engine server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New("engine-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init catalog source backend with retry ---
	var source catalog.Source
	switch cfg.Catalog.Source {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		source = catalog.NewElasticsearchSource(esClient.Client, cfg.Database.Elasticsearch.Index)

	default:
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
		source = catalog.NewPostgresSource(pg.DB)
	}

	// --- Init Redis (reasoning verdict cache, optional) ---
	var reasoningCache *database.RedisClient
	if cfg.Reasoning.CacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			reasoningCache, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return reasoningCache.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			// The cache is an optimization; run without it.
			zapLog.Warn("redis unavailable, verdict caching disabled", zap.Error(err))
			reasoningCache = nil
		} else {
			defer reasoningCache.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Build and publish the initial catalog snapshot ---
	store := catalog.NewStore()
	builder, err := catalog.NewBuilder(log)
	if err != nil {
		zapLog.Fatal("catalog schema compile failed", zap.Error(err))
	}
	ingestor := catalog.NewIngestor(source, builder, store, log)

	err = retryWithBackoff(func() error {
		_, err := ingestor.Refresh(ctx)
		return err
	}, 5, 2*time.Second, zapLog, "Initial catalog ingestion")
	if err != nil {
		zapLog.Fatal("catalog ingestion failed after retries", zap.Error(err))
	}

	// --- Background refresh ---
	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	if cfg.Catalog.RefreshInterval > 0 {
		go refreshLoop(refreshCtx, ingestor, time.Duration(cfg.Catalog.RefreshInterval)*time.Second, zapLog)
	}

	// --- Wire the engine ---
	var reasoner reasoning.Client
	if cfg.Reasoning.BaseURL != "" {
		var cache *redis.Client
		if reasoningCache != nil {
			cache = reasoningCache.Client
		}
		reasoner = reasoning.NewHTTPClient(cfg.Reasoning, cache, log)
		zapLog.Info("Reasoning collaborator configured", zap.String("baseUrl", cfg.Reasoning.BaseURL))
	} else {
		zapLog.Warn("No reasoning collaborator configured; narrative rules will be undetermined")
	}

	ev := evaluator.New(cfg.Engine, reasoner, log)
	rk := ranker.New(cfg.Engine, log)
	eng := engine.New(cfg.Engine, store, ev, rk, log)

	router := rest.NewRouter(&rest.Container{
		Engine:   eng,
		Ingestor: ingestor,
		Logger:   log,
		Obs:      obs,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutdown signal received")

	stopRefresh()
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown error", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}

// refreshLoop re-ingests the catalog on a fixed interval. Failures keep the
// previous snapshot and are retried on the next tick.
func refreshLoop(ctx context.Context, ingestor *catalog.Ingestor, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := ingestor.Refresh(ctx); err != nil {
				log.Warn("scheduled catalog refresh failed", zap.Error(err))
			}
		}
	}
}
