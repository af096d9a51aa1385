// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"itinerary-workers/internal/bootstrap"
	"itinerary-workers/internal/common/camunda"
	"itinerary-workers/internal/common/config"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/common/observability"

	atb "itinerary-workers/internal/workers/itinerary/advise-trip-booking"
	ctb "itinerary-workers/internal/workers/itinerary/compute-trip-budget"
	gtp "itinerary-workers/internal/workers/itinerary/generate-trip-plan"
	gtpv "itinerary-workers/internal/workers/itinerary/generate-trip-preview"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}
	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name, cfg.App.Version, cfg.Tracing)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{ConnectAttempts: 10, ConnectDelay: 2 * time.Second})
	if err != nil {
		zapLog.Fatal("planner runtime failed", zap.Error(err))
	}

	zeebe, err := camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))

	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, log))
	}

	start(gtpv.TaskType, gtpv.NewHandler(&gtpv.Config{
		Timeout: workerTimeout(cfg, gtpv.TaskType, gtpv.LoadConfig().Timeout),
	}, rt.Service, obs, log))
	start(gtp.TaskType, gtp.NewHandler(&gtp.Config{
		Timeout: workerTimeout(cfg, gtp.TaskType, gtp.LoadConfig().Timeout),
	}, rt.Service, obs, log))
	start(ctb.TaskType, ctb.NewHandler(ctb.LoadConfig(), rt.Service, obs, log))
	start(atb.TaskType, atb.NewHandler(atb.LoadConfig(), rt.Service, obs, log))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newOpsRouter(rt, zeebe, cfg.App.Version),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	rt.Close()
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping ops server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// workerTimeout prefers the configured job timeout over the handler default.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if wcfg, ok := cfg.Workers[taskType]; ok && wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	return fallback
}
