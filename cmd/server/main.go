package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinite-experiment/paddock/internal/api"
	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/config"
	"infinite-experiment/paddock/internal/constants"
	"infinite-experiment/paddock/internal/db"
	"infinite-experiment/paddock/internal/jobs"
	"infinite-experiment/paddock/internal/logging"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/providers"
	"infinite-experiment/paddock/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Paddock starting up",
		"environment", cfg.AppEnv,
		"ingest_mode", cfg.IngestMode,
		"poll_interval", cfg.PollInterval.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := db.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres", "error", err.Error())
	}
	defer conns.Close()

	cache := newCache(cfg)
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	provider := providers.NewOpenF1Provider(providers.OpenF1Options{
		BaseURL:           cfg.OpenF1BaseURL,
		Timeout:           cfg.OpenF1Timeout,
		RequestsPerSecond: cfg.OpenF1RPS,
		Metrics:           metricsReg,
	})

	deps := api.InitDependencies(cfg, conns, cache, provider, metricsReg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	positionSync := jobs.InitializeJobs(jobCtx, cfg, deps.Services.Sessions, provider, deps.Repo.History, metricsReg)

	upSince := time.Now()
	router := routes.RegisterRoutes(cfg, deps, api.NewJobsHandler(positionSync), upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	cancelJobs()
	positionSync.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("HTTP shutdown failed", "error", err.Error())
	}
}

// newCache uses Redis when it is configured and the in-process cache
// otherwise.
func newCache(cfg *config.Config) common.CacheInterface {
	if addr := cfg.RedisAddr(); addr != "" {
		client := common.NewRedisClient(addr, cfg.RedisPassword, cfg.RedisDB)
		return common.NewRedisCacheService(client, "paddock:")
	}
	logging.Info("Redis not configured, using in-memory cache")
	return common.NewCacheService(constants.DefaultCacheExpiration, constants.DefaultCacheCleanup)
}
