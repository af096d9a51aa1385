// internal/workers/itinerary/generate-trip-plan/handler.go
package generatetripplan

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"itinerary-workers/internal/common/camunda"
	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/common/metrics"
	"itinerary-workers/internal/common/observability"
	"itinerary-workers/internal/models"
)

const (
	TaskType = "generate-trip-plan"
)

type Planner interface {
	GenerateFullPlan(ctx context.Context, planID string, req models.TripRequest) (models.GenerationResult, error)
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
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.Key))
	defer span.End()

	var input Input
	if err := camunda.DecodeJob(job, TaskType, &input); err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	camunda.CompleteJob(client, job, output, h.logger)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

// Execute generates the full plan. Only invalid requests fail; LLM problems resolve to a
// fallback document.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.planner.GenerateFullPlan(ctx, input.PlanID, input.TripRequest)
	if err != nil {
		return nil, err
	}

	h.logger.Info("plan generated", map[string]interface{}{
		"planId":       result.ID,
		"destination":  input.TripRequest.Destination,
		"provenance":   string(result.Provenance),
		"failureClass": string(result.FailureClass),
		"attempts":     result.Attempts,
		"elapsedMs":    result.Elapsed.Milliseconds(),
	})

	return &Output{
		PlanID:       result.ID,
		Content:      result.Content,
		Provenance:   string(result.Provenance),
		FailureClass: string(result.FailureClass),
		ElapsedMs:    result.Elapsed.Milliseconds(),
		Attempts:     result.Attempts,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errors.HandleJobError(context.Background(), client, job, stdErr)
}
