// internal/workers/itinerary/compute-trip-budget/handler.go
package computetripbudget

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"itinerary-workers/internal/common/camunda"
	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/common/metrics"
	"itinerary-workers/internal/common/observability"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/budget"
)

const (
	TaskType = "compute-trip-budget"
)

type Planner interface {
	ComputeBudget(in budget.Input) models.BudgetBreakdown
}

type Handler struct {
	config  *Config
	planner Planner
	errors  *apperrors.ErrorHandler
	obs     *observability.Observability
	logger  logger.Logger
}

func NewHandler(config *Config, planner Planner, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		planner: planner,
		errors:  apperrors.NewErrorHandler(log),
		obs:     obs,
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeJob(job, TaskType, &input); err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errors.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	output := h.Execute(ctx, &input)
	camunda.CompleteJob(client, job, output, h.logger)

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

// Execute never fails: the engine clamps every input into range.
func (h *Handler) Execute(_ context.Context, input *Input) *Output {
	breakdown := h.planner.ComputeBudget(*input)

	h.logger.Info("budget computed", map[string]interface{}{
		"destination": input.Destination,
		"total":       breakdown.Total,
		"currency":    breakdown.Currency,
		"costTier":    string(breakdown.CostTier),
		"derived":     breakdown.Derived,
	})

	return &Output{Budget: breakdown}
}
