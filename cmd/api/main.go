package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/userdir/internal/assets"
	"github.com/geocoder89/userdir/internal/auth"
	"github.com/geocoder89/userdir/internal/cache"
	"github.com/geocoder89/userdir/internal/config"
	"github.com/geocoder89/userdir/internal/db"
	"github.com/geocoder89/userdir/internal/domain/user"
	httpx "github.com/geocoder89/userdir/internal/http"
	"github.com/geocoder89/userdir/internal/mapper"
	"github.com/geocoder89/userdir/internal/observability"
	"github.com/geocoder89/userdir/internal/repo/memory"
	"github.com/geocoder89/userdir/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var store httpx.Store

	switch cfg.Store {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DB.URL(), cfg.DB.MaxConns)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		schemaCtx, cancel := config.WithTimeout(5 * time.Second)
		err = db.EnsureSchema(schemaCtx, pool)
		cancel()
		if err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}

		store = postgres.NewUsersRepo(pool, prom)
	default:
		store = memory.NewUsersRepo()
	}

	gen, err := assets.NewCDNGenerator(cfg.AssetBaseURL)
	if err != nil {
		log.Error("asset base url invalid", "err", err)
		os.Exit(1)
	}

	deps := httpx.Deps{
		Env:         cfg.Env,
		Log:         log,
		Store:       store,
		Mapper:      mapper.New(gen, log),
		Cache:       cache.New[*user.User](cfg.CacheTTL),
		Prom:        prom,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		WriteRole:   cfg.WriteRole,
		ServiceName: cfg.ServiceName,
	}

	if cfg.JWTSecret != "" {
		deps.Verifier = auth.NewManager(cfg.JWTSecret, 15*time.Minute)
	} else {
		log.Warn("JWT_SECRET not set, write routes are open")
	}

	// set up routers with the log
	router := httpx.NewRouter(deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
