// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	GenerationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_generation_outcomes_total",
			Help: "Generation outcomes by mode, provenance and failure class",
		},
		[]string{"mode", "provenance", "failure_class"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itinerary_generation_duration_seconds",
			Help:    "Time from submission to resolved outcome",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
		},
		[]string{"mode", "provenance"},
	)

	GenerationAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itinerary_generation_attempts",
			Help:    "LLM attempts per generation",
			Buckets: []float64{0, 1, 2},
		},
		[]string{"mode"},
	)

	GenerationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itinerary_generation_queue_depth",
			Help: "Jobs waiting for a generation worker",
		},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itinerary_pipeline_stage_duration_seconds",
			Help:    "Content pipeline stage duration",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"stage"},
	)

	PlanStoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_plan_store_writes_total",
			Help: "Plan record writes by store and result",
		},
		[]string{"store", "result"},
	)
)

// Recorder forwards planner events to the package-level vectors.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (*Recorder) ObserveStage(stage string, d time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (*Recorder) ObserveGeneration(mode, provenance, failureClass string, elapsed time.Duration, attempts int) {
	if failureClass == "" {
		failureClass = "none"
	}
	GenerationOutcomes.WithLabelValues(mode, provenance, failureClass).Inc()
	GenerationDuration.WithLabelValues(mode, provenance).Observe(elapsed.Seconds())
	GenerationAttempts.WithLabelValues(mode).Observe(float64(attempts))
}

func (*Recorder) SetQueueDepth(n int) {
	GenerationQueueDepth.Set(float64(n))
}

func (*Recorder) ObserveStoreWrite(store string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	PlanStoreWrites.WithLabelValues(store, result).Inc()
}
