// internal/workers/itinerary/advise-trip-booking/handler.go
package advisetripbooking

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"itinerary-workers/internal/common/camunda"
	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/common/metrics"
	"itinerary-workers/internal/common/observability"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/advisor"
)

const (
	TaskType = "advise-trip-booking"
)

type Advisor interface {
	Advise(q advisor.Query) models.BookingAdvisory
}

type Handler struct {
	config  *Config
	advisor Advisor
	errors  *apperrors.ErrorHandler
	obs     *observability.Observability
	logger  logger.Logger
}

func NewHandler(config *Config, adv Advisor, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		advisor: adv,
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
	err := camunda.DecodeJob(job, TaskType, &input)
	var output *Output
	if err == nil {
		output, err = h.Execute(ctx, &input)
	}
	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errors.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	camunda.CompleteJob(client, job, output, h.logger)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

// Execute returns advice for one date. Unknown destinations yield an empty advisory.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	date, err := time.Parse(models.DateLayout, input.Date)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("date must be %s", models.DateLayout))
	}

	advisory := h.advisor.Advise(advisor.Query{
		Destination:  input.Destination,
		ActivityType: input.ActivityType,
		Date:         date,
		TimeSlot:     input.TimeSlot,
		GroupSize:    input.GroupSize,
	})

	h.logger.Info("booking advice produced", map[string]interface{}{
		"destination": input.Destination,
		"country":     advisory.Country,
		"priority":    string(advisory.Priority),
		"urgency":     string(advisory.Urgency),
		"warnings":    len(advisory.Warnings),
	})

	return &Output{Advisory: advisory}, nil
}
