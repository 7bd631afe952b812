package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/config"
	"github.com/BrightonDube/BizPilot2-sub004/internal/infra"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"
	"github.com/BrightonDube/BizPilot2-sub004/internal/router"
	"github.com/BrightonDube/BizPilot2-sub004/internal/worker"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clockwork.NewRealClock()

	// Audit delivery chain: dispatcher → queue → worker → sink, with the
	// circuit breaker guarding the sink and the mailer carrying ops alerts.
	auditCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	sink := infra.NewAuditSinkClient(cfg.AuditSinkURL)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	auditWorker := worker.NewAuditWorker(sink, auditCB, rdb, dispatcher, clk)
	alertWorker := worker.NewAlertWorker(mailer, cfg.AlertTo())
	worker.StartWorkerPool(ctx, rdb, map[string]worker.Handler{
		worker.QueueAudit: auditWorker.Process,
		worker.QueueAlert: alertWorker.Process,
	}, cfg.WorkerPoolSize)

	// Parked audit events flow back once the sink recovers.
	worker.StartDLQReplay(ctx, worker.DLQReplayConfig{
		RDB:    rdb,
		CB:     auditCB,
		Queues: []string{worker.QueueAudit},
	})

	// Background ledger verification. The sweep only reads and alerts; it
	// never rewrites session rows.
	sessionRepo := repository.NewSessionRepository(db, cfg.LockTimeout())
	if _, err := worker.StartReconcileCron(ctx, worker.ReconcileCronConfig{
		Sessions:   sessionRepo,
		Dispatcher: dispatcher,
		Schedule:   cfg.ReconcileCron,
		Clock:      clk,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to start reconcile cron")
	}

	r := router.New(cfg, db, rdb, auditCB, dispatcher, clk)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("cash register engine listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
