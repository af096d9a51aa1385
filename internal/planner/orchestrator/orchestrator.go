// internal/planner/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"itinerary-workers/internal/common/config"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/llm"
	"itinerary-workers/internal/planner/pipeline"
)

const maxAttempts = 2

var tracer = otel.Tracer("itinerary-workers/orchestrator")

type Synthesizer interface {
	Synthesize(req models.TripRequest, mode models.Mode) string
}

type Transformer interface {
	Process(doc string, opts pipeline.Options) (string, error)
}

// Recorder receives one observation per resolved outcome and queue movement.
type Recorder interface {
	ObserveGeneration(mode, provenance, failureClass string, elapsed time.Duration, attempts int)
	SetQueueDepth(n int)
}

type ModeLimits struct {
	Timeout   time.Duration
	MaxTokens int
}

type Config struct {
	Concurrency  int
	QueueSize    int
	Cooldown     time.Duration
	RetryBackoff time.Duration
	// Overhead is the grace period after a job's deadline before fallback is forced.
	Overhead    time.Duration
	Temperature float64
	Preview     ModeLimits
	Full        ModeLimits
}

// ConfigFrom converts the millisecond-based generation settings.
func ConfigFrom(g config.GenerationConfig, temperature float64) Config {
	return Config{
		Concurrency:  g.Concurrency,
		QueueSize:    g.QueueSize,
		Cooldown:     config.GetDuration(g.Cooldown),
		RetryBackoff: config.GetDuration(g.RetryBackoff),
		Overhead:     config.GetDuration(g.Overhead),
		Temperature:  temperature,
		Preview:      ModeLimits{Timeout: config.GetDuration(g.PreviewTimeout), MaxTokens: g.PreviewMaxTokens},
		Full:         ModeLimits{Timeout: config.GetDuration(g.FullTimeout), MaxTokens: g.FullMaxTokens},
	}
}

func (c Config) limits(mode models.Mode) ModeLimits {
	if mode == models.ModePreview {
		return c.Preview
	}
	return c.Full
}

type Job struct {
	Request      models.TripRequest
	Mode         models.Mode
	SystemPrompt string
	UserPrompt   string
	Options      pipeline.Options
}

type Outcome struct {
	Content      string
	Provenance   models.Provenance
	FailureClass models.FailureClass
	Elapsed      time.Duration
	Attempts     int
	Mode         models.Mode
}

// Future resolves exactly once.
type Future struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(o Outcome) bool {
	resolved := false
	f.once.Do(func() {
		f.outcome = o
		resolved = true
		close(f.done)
	})
	return resolved
}

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the outcome is available. Every future resolves no later than its
// deadline plus the configured overhead.
func (f *Future) Wait() Outcome {
	<-f.done
	return f.outcome
}

type task struct {
	ctx       context.Context
	cancel    context.CancelFunc
	job       Job
	future    *Future
	submitted time.Time
	deadline  time.Time
	attempts  atomic.Int32
}

// Orchestrator runs generation jobs through a bounded queue served by a fixed set of
// workers. All workers share one cooldown: an LLM call starts no sooner than Cooldown
// after the previous generation completed.
type Orchestrator struct {
	cfg       Config
	generator llm.Generator
	synth     Synthesizer
	transform Transformer
	recorder  Recorder
	logger    logger.Logger

	queue   chan *task
	limit   rate.Limit
	limiter atomic.Pointer[rate.Limiter]

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool
}

// New starts cfg.Concurrency workers. Call Close to stop them.
func New(cfg Config, generator llm.Generator, synth Synthesizer, transform Transformer, recorder Recorder, log logger.Logger) *Orchestrator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Preview.Timeout <= 0 {
		cfg.Preview.Timeout = 25 * time.Second
	}
	if cfg.Full.Timeout <= 0 {
		cfg.Full.Timeout = 90 * time.Second
	}
	if generator == nil {
		generator = llm.Disabled{}
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	limit := rate.Inf
	if cfg.Cooldown > 0 {
		limit = rate.Every(cfg.Cooldown)
	}

	o := &Orchestrator{
		cfg:       cfg,
		generator: generator,
		synth:     synth,
		transform: transform,
		recorder:  recorder,
		logger:    log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		queue:     make(chan *task, cfg.QueueSize),
		limit:     limit,
		stop:      make(chan struct{}),
	}
	o.limiter.Store(rate.NewLimiter(limit, 1))

	for i := 0; i < cfg.Concurrency; i++ {
		o.wg.Add(1)
		go o.worker()
	}
	return o
}

// Run enqueues job and waits for its outcome.
func (o *Orchestrator) Run(ctx context.Context, job Job) Outcome {
	return o.Enqueue(ctx, job).Wait()
}

// Enqueue fixes the job's absolute deadline and submits it. Cancelling ctx after
// submission does not cancel the job; the deadline does.
func (o *Orchestrator) Enqueue(ctx context.Context, job Job) *Future {
	submitted := time.Now()
	limits := o.cfg.limits(job.Mode)
	deadline := submitted.Add(limits.Timeout)

	jobCtx, cancel := context.WithDeadline(context.WithoutCancel(ctx), deadline)
	t := &task{
		ctx:       jobCtx,
		cancel:    cancel,
		job:       job,
		future:    newFuture(),
		submitted: submitted,
		deadline:  deadline,
	}

	if o.closed.Load() {
		cancel()
		o.finish(t, o.fallback(t, models.FailureTransport))
		return t.future
	}

	go o.watch(t)

	select {
	case o.queue <- t:
		o.recorder.SetQueueDepth(len(o.queue))
	default:
		o.logger.Warn("Generation queue full, waiting for capacity", map[string]interface{}{
			"mode":      job.Mode,
			"queueSize": o.cfg.QueueSize,
		})
		go o.submitWhenFree(t)
	}
	return t.future
}

func (o *Orchestrator) submitWhenFree(t *task) {
	select {
	case o.queue <- t:
		o.recorder.SetQueueDepth(len(o.queue))
	case <-t.ctx.Done():
	case <-o.stop:
		t.cancel()
		o.finish(t, o.fallback(t, models.FailureTransport))
	}
}

// watch forces a timeout fallback once deadline+overhead passes without an outcome.
func (o *Orchestrator) watch(t *task) {
	timer := time.NewTimer(time.Until(t.deadline.Add(o.cfg.Overhead)))
	defer timer.Stop()

	select {
	case <-t.future.Done():
	case <-timer.C:
		t.cancel()
		o.finish(t, o.fallback(t, models.FailureTimeout))
	}
}

// Close stops the workers after their in-flight jobs. Jobs still queued resolve at once
// with a transport-error fallback.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() {
		o.closed.Store(true)
		close(o.stop)
	})
	o.wg.Wait()

	for {
		select {
		case t := <-o.queue:
			t.cancel()
			o.finish(t, o.fallback(t, models.FailureTransport))
		default:
			o.recorder.SetQueueDepth(0)
			return
		}
	}
}

// coolDown restarts the cooldown window from now.
func (o *Orchestrator) coolDown() {
	l := rate.NewLimiter(o.limit, 1)
	l.Allow()
	o.limiter.Store(l)
}

func (o *Orchestrator) worker() {
	defer o.wg.Done()
	for {
		select {
		case <-o.stop:
			return
		default:
		}

		select {
		case <-o.stop:
			return
		case t := <-o.queue:
			o.recorder.SetQueueDepth(len(o.queue))
			o.process(t)
		}
	}
}

func (o *Orchestrator) process(t *task) {
	defer t.cancel()

	select {
	case <-t.future.Done():
		return
	default:
	}
	if t.ctx.Err() != nil {
		o.finish(t, o.fallback(t, models.FailureTimeout))
		return
	}

	ctx, span := tracer.Start(t.ctx, "orchestrator.generate")
	span.SetAttributes(attribute.String("mode", string(t.job.Mode)), attribute.String("destination", t.job.Request.Destination))
	defer span.End()

	content, class := o.generate(ctx, t)
	if t.attempts.Load() > 0 {
		o.coolDown()
	}
	if class != models.FailureNone {
		span.SetStatus(codes.Error, string(class))
		o.finish(t, o.fallback(t, class))
		return
	}

	o.finish(t, Outcome{
		Content:    content,
		Provenance: models.ProvenanceAI,
		Attempts:   int(t.attempts.Load()),
	})
}

func (o *Orchestrator) generate(ctx context.Context, t *task) (string, models.FailureClass) {
	limits := o.cfg.limits(t.job.Mode)
	req := llm.Request{
		SystemPrompt: t.job.SystemPrompt,
		UserPrompt:   t.job.UserPrompt,
		MaxTokens:    limits.MaxTokens,
		Temperature:  o.cfg.Temperature,
	}
	log := o.logger.WithFields(map[string]interface{}{
		"mode":        t.job.Mode,
		"destination": t.job.Request.Destination,
	})

	if err := o.limiter.Load().Wait(ctx); err != nil {
		return "", models.FailureTimeout
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		t.attempts.Add(1)

		text, err := o.generator.Generate(ctx, req)
		if err == nil {
			doc, perr := o.transform.Process(text, t.job.Options)
			if perr != nil {
				log.Warn("Generated document rejected", map[string]interface{}{"error": perr.Error()})
				return "", models.FailureGenericContent
			}
			return doc, models.FailureNone
		}

		class := classify(ctx, err)
		if class == models.FailureTransport && attempt < maxAttempts && !errors.Is(err, llm.ErrDisabled) {
			log.Warn("LLM transport error, retrying once", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			select {
			case <-time.After(o.cfg.RetryBackoff):
				continue
			case <-ctx.Done():
				return "", models.FailureTimeout
			}
		}

		log.Warn("LLM generation failed", map[string]interface{}{
			"attempt":      attempt,
			"failureClass": class,
			"error":        err.Error(),
		})
		return "", class
	}
	return "", models.FailureTransport
}

func classify(ctx context.Context, err error) models.FailureClass {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return models.FailureTimeout
	case errors.Is(err, llm.ErrEmptyResponse):
		return models.FailureEmptyResponse
	case errors.Is(err, llm.ErrTransport):
		return models.FailureTransport
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return models.FailureTimeout
	default:
		return models.FailureTransport
	}
}

// fallback renders the deterministic document. It is trusted, so validation is skipped.
func (o *Orchestrator) fallback(t *task, class models.FailureClass) Outcome {
	doc := o.synth.Synthesize(t.job.Request, t.job.Mode)

	opts := t.job.Options
	opts.SkipValidation = true
	if out, err := o.transform.Process(doc, opts); err == nil {
		doc = out
	} else {
		o.logger.Error("Fallback transform failed, returning untransformed document", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return Outcome{
		Content:      doc,
		Provenance:   models.ProvenanceFallback,
		FailureClass: class,
		Attempts:     int(t.attempts.Load()),
	}
}

func (o *Orchestrator) finish(t *task, out Outcome) {
	out.Mode = t.job.Mode
	out.Elapsed = time.Since(t.submitted)
	if !t.future.resolve(out) {
		return
	}

	o.recorder.ObserveGeneration(string(out.Mode), string(out.Provenance), string(out.FailureClass), out.Elapsed, out.Attempts)
	o.logger.Info("Generation resolved", map[string]interface{}{
		"mode":         out.Mode,
		"provenance":   out.Provenance,
		"failureClass": out.FailureClass,
		"attempts":     out.Attempts,
		"elapsedMs":    out.Elapsed.Milliseconds(),
		"destination":  t.job.Request.Destination,
	})
}

type noopRecorder struct{}

func (noopRecorder) ObserveGeneration(string, string, string, time.Duration, int) {}
func (noopRecorder) SetQueueDepth(int)                                              {}
