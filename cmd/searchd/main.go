package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/searchlab/retrieval-eval-platform/internal/analytics"
	"github.com/searchlab/retrieval-eval-platform/internal/corpus"
	"github.com/searchlab/retrieval-eval-platform/internal/fetch"
	"github.com/searchlab/retrieval-eval-platform/internal/qrels"
	"github.com/searchlab/retrieval-eval-platform/internal/search/cache"
	"github.com/searchlab/retrieval-eval-platform/internal/server"
	"github.com/searchlab/retrieval-eval-platform/pkg/config"
	"github.com/searchlab/retrieval-eval-platform/pkg/health"
	"github.com/searchlab/retrieval-eval-platform/pkg/kafka"
	"github.com/searchlab/retrieval-eval-platform/pkg/logger"
	"github.com/searchlab/retrieval-eval-platform/pkg/metrics"
	"github.com/searchlab/retrieval-eval-platform/pkg/middleware"
	pkgpostgres "github.com/searchlab/retrieval-eval-platform/pkg/postgres"
	"github.com/searchlab/retrieval-eval-platform/pkg/ratelimit"
	pkgredis "github.com/searchlab/retrieval-eval-platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting retrieval service", "port", cfg.Server.Port)

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.New(cfg.Fetcher, m)
	corpusSvc := corpus.NewService(cfg.Search, fetcher)

	var store qrels.Store
	var pgClient *pkgpostgres.Client
	pgClient, err = pkgpostgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, judgments held in memory", "error", err)
		store = qrels.NewMemoryStore()
	} else {
		defer pgClient.Close()
		pgStore := qrels.NewPostgresStore(pgClient)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure judgment schema", "error", err)
			os.Exit(1)
		}
		store = pgStore
		slog.Info("judgment store backed by postgres",
			"host", cfg.Postgres.Host,
			"database", cfg.Postgres.Database,
		)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	var collector *analytics.Collector
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	} else {
		slog.Warn("no kafka brokers configured, analytics disabled")
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		idx := corpusSvc.Index()
		if idx.DocCount() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents indexed", idx.DocCount()),
			}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: "empty corpus"}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if pgClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := pgClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.New(corpusSvc, store, queryCache, collector, m, cfg.Search)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/corpus", h.Ingest)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/evaluate", h.Evaluate)
	mux.HandleFunc("POST /api/v1/judgments", h.SaveJudgment)
	mux.HandleFunc("GET /api/v1/judgments", h.GetJudgment)
	mux.HandleFunc("DELETE /api/v1/judgments", h.DeleteJudgment)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	limiter := ratelimit.New(time.Minute)
	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RateLimit(limiter, cfg.Server.RateLimitPerMin)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
		slog.Info("metrics server listening", "port", cfg.Metrics.Port)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("retrieval service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("retrieval service stopped")
}
