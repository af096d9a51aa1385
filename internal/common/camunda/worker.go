// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"itinerary-workers/internal/common/logger"
)

// JobHandler completes, fails or throws the job it receives.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// WorkerOptions size a job worker subscription.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. The subscription starts polling immediately.
func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, log logger.Logger) *Worker {
	step := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		Name(taskType)
	if opts.MaxJobsActive > 0 {
		step = step.MaxJobsActive(opts.MaxJobsActive)
	}
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	w := &Worker{
		worker:   step.Open(),
		logger:   log.WithFields(map[string]interface{}{"taskType": taskType}),
		taskType: taskType,
	}
	w.logger.Info("Worker started", map[string]interface{}{"maxJobsActive": opts.MaxJobsActive})
	return w
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Close stops polling and waits for in-flight handlers.
func (w *Worker) Close() {
	w.logger.Info("Stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
