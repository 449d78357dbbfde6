package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/geocoder89/userdir/internal/assets"
	"github.com/geocoder89/userdir/internal/config"
	"github.com/geocoder89/userdir/internal/db"
	"github.com/geocoder89/userdir/internal/mapper"
	"github.com/geocoder89/userdir/internal/observability"
	"github.com/geocoder89/userdir/internal/queue/redisclient"
	"github.com/geocoder89/userdir/internal/queue/worker"
	"github.com/geocoder89/userdir/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName+"-worker", cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	// a worker only makes sense against a shared store
	if cfg.Store != "postgres" {
		log.Error("worker requires STORE=postgres", "store", cfg.Store)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DB.URL(), cfg.DB.MaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx); err != nil {
		log.Error("redis ping failed", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	gen, err := assets.NewCDNGenerator(cfg.AssetBaseURL)
	if err != nil {
		log.Error("asset base url invalid", "err", err)
		os.Exit(1)
	}

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID:    workerID,
		PollTimeout: cfg.WorkerPollTimeout,
	},
		rdb.Queue(cfg.NotifyQueue),
		postgres.NewUsersRepo(pool, prom),
		mapper.New(gen, log),
		log.With("worker_id", workerID),
		prom,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", w.HealthHandler())

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "queue", cfg.NotifyQueue, "health_port", cfg.WorkerHealthPort)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)
	_ = shutdownTracer(shutdownCtx)

	log.Info("worker shutdown complete")
}
