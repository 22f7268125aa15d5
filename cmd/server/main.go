package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"opscheck/internal/alert"
	"opscheck/internal/catalog"
	"opscheck/internal/ledger/cache"
	"opscheck/internal/ledger/handler"
	ledgermetrics "opscheck/internal/ledger/metrics"
	"opscheck/internal/ledger/service"
	"opscheck/internal/ledger/store"
	eventstore "opscheck/internal/ledger/store/event"
	recordstore "opscheck/internal/ledger/store/record"
	"opscheck/internal/platform/config"
	"opscheck/internal/platform/httpserver"
	"opscheck/internal/platform/logger"
	platformredis "opscheck/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Error("ping database", "error", err.Error())
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}

	svcOpts := []service.Option{
		service.WithMetrics(ledgermetrics.New()),
	}
	if redisClient != nil {
		defer redisClient.Close()
		svcOpts = append(svcOpts, service.WithCache(cache.New(redisClient.Client, cfg.CacheTTL)))
		log.Info("read cache enabled", "ttl", cfg.CacheTTL.String())
	}

	svc := service.NewService(
		store.NewPostgresTx(db),
		recordstore.NewPostgres(db),
		eventstore.NewPostgres(db),
		catalog.NewPostgres(db),
		log,
		svcOpts...,
	)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Alert.Enabled {
		worker := alert.NewWorker(svc, alert.NewLogNotifier(log), log, cfg.Alert.Times)
		go func() {
			if err := worker.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("alert worker stopped", "error", err.Error())
			}
		}()
		log.Info("alert worker scheduled", "times", cfg.Alert.Times)
	}

	go func() {
		log.Info("starting opscheck", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-rootCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
