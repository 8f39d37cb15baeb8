// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ppob-settlement/internal/config"
	"ppob-settlement/internal/infra/adapters/gateway"
	"ppob-settlement/internal/infra/adapters/remote"
	"ppob-settlement/internal/infra/api"
	apiv1 "ppob-settlement/internal/infra/api/apiv1"
	pg "ppob-settlement/internal/infra/db/postgres"
	"ppob-settlement/internal/infra/logging"
	"ppob-settlement/internal/infra/metrics"
	red "ppob-settlement/internal/infra/redis"
	"ppob-settlement/internal/infra/sched"
	"ppob-settlement/internal/infra/worker"
	"ppob-settlement/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, debug level)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	locker := red.NewLocker(redisClient)
	pendingOrders := red.NewOrderStateRepo(redisClient, cfg.Redis.OrderTTL)
	profileCache := red.NewProfileCacheRepo(redisClient)

	// ---- Repositories ----
	settlementRepo := pg.NewSettlementRecordRepo(pool)
	productRepo := pg.NewProductRepo(pool)
	journal := pg.NewPendingTransactionRepo(pool)

	// ---- Remote adapters ----
	statusAPI, err := gateway.NewTripayStatusAPI(cfg.Gateway.BaseURL, cfg.Gateway.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("status gateway")
	}
	accountAPI := remote.NewAccountAPI(cfg.Remote.AccountBaseURL, cfg.Remote.APIKey)
	orderAPI := remote.NewOrderAPI(cfg.Remote.OrderBaseURL, cfg.Remote.APIKey)
	pinAPI := remote.NewPinAPI(cfg.Remote.PinBaseURL, cfg.Remote.APIKey)

	// ---- Use cases ----
	settleUC := usecase.NewSettlementUseCase(settlementRepo, productRepo, profileCache, accountAPI, locker, logger)
	registry := usecase.NewPollerRegistry(usecase.PollerDeps{
		Status:  statusAPI,
		Orders:  orderAPI,
		Settle:  settleUC,
		Pending: journal,
		Log:     logger,
	}, cfg.Poller.Interval, cfg.Poller.MaxAttempts)
	orderUC := usecase.NewOrderUseCase(settleUC, accountAPI, orderAPI, pendingOrders, journal, registry, logger)
	pinUC := usecase.NewPinUseCase(pinAPI, pendingOrders, orderUC, logger)

	// ---- Reconciler ----
	pool2 := worker.NewPool(cfg.Reconciler.Workers, logger)
	pool2.Start(ctx)
	reconciler := sched.NewReconciler(journal, registry, pool2, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- DB pool stats ----
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- HTTP ----
	auth := api.NewAuthManager(cfg.HTTP.AdminSecret, 30*time.Minute)
	srv := apiv1.NewServer(orderUC, pinUC, registry, journal, auth, cfg.HTTP.AdminSecret, logger)

	router := chi.NewRouter()
	router.Use(api.TraceID(), api.RequestLog(logger), api.Recover(logger), api.Timeout(30*time.Second))
	apiv1.RegisterAPIV1(router, srv)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: router,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	// Pollers journal their state; unresolved references are picked up by the
	// reconciler on the next start.
	registry.StopAll()
	cancel()
	pool2.Stop()
}
