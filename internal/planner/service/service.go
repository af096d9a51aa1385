// internal/planner/service/service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/advisor"
	"itinerary-workers/internal/planner/budget"
	"itinerary-workers/internal/planner/destinations"
	"itinerary-workers/internal/planner/links"
	"itinerary-workers/internal/planner/orchestrator"
	"itinerary-workers/internal/planner/pipeline"
	"itinerary-workers/internal/planner/prompt"
	"itinerary-workers/internal/planner/store"
	"itinerary-workers/internal/planner/weather"
)

// MaxTripDays bounds accepted trip length.
const MaxTripDays = 365

// DefaultContextTimeout caps how long prompt context gathering may delay a generation.
const DefaultContextTimeout = 750 * time.Millisecond

var tracer = otel.Tracer("itinerary-workers/service")

type Runner interface {
	Run(ctx context.Context, job orchestrator.Job) orchestrator.Outcome
}

type WeatherSource interface {
	Outlook(ctx context.Context, req models.TripRequest) weather.Outlook
}

// LinkOptions configure monetized links and image policy for generated documents.
type LinkOptions struct {
	PartnerID      string
	ImagesDisabled bool
	Denylist       []string
}

// Dependencies wires the service. Orchestrator is required; the rest is optional.
type Dependencies struct {
	Catalog      *destinations.Catalog
	Orchestrator Runner
	Weather      WeatherSource
	Store        store.PlanStore
	Links        LinkOptions
	Logger       logger.Logger
	// ContextTimeout bounds the weather lookup. Zero means DefaultContextTimeout.
	ContextTimeout time.Duration
}

// Service exposes the four planner operations.
type Service struct {
	catalog      *destinations.Catalog
	budget       *budget.Engine
	advisor      *advisor.Advisor
	orchestrator Runner
	weather      WeatherSource
	store        store.PlanStore
	links        LinkOptions
	logger       logger.Logger
	now          func() time.Time
	newID        func() string

	contextTimeout time.Duration
	pending        sync.WaitGroup
}

func New(deps Dependencies) *Service {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = destinations.Default()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	contextTimeout := deps.ContextTimeout
	if contextTimeout <= 0 {
		contextTimeout = DefaultContextTimeout
	}
	return &Service{
		catalog:      catalog,
		budget:       budget.NewEngine(catalog),
		advisor:      advisor.New(catalog, catalog),
		orchestrator: deps.Orchestrator,
		weather:      deps.Weather,
		store:        deps.Store,
		links:        deps.Links,
		logger:       log.WithFields(map[string]interface{}{"component": "planner"}),
		now:          time.Now,
		newID:        uuid.NewString,

		contextTimeout: contextTimeout,
	}
}

// ValidateRequest rejects requests the planner cannot interpret.
func ValidateRequest(req models.TripRequest) error {
	var problems []string
	if strings.TrimSpace(req.Destination) == "" {
		problems = append(problems, "destination is required")
	}
	start, startErr := req.Start()
	if startErr != nil {
		problems = append(problems, fmt.Sprintf("startDate must be %s", models.DateLayout))
	}
	end, endErr := req.End()
	if endErr != nil {
		problems = append(problems, fmt.Sprintf("endDate must be %s", models.DateLayout))
	}
	if startErr == nil && endErr == nil {
		if end.Before(start) {
			problems = append(problems, "endDate is before startDate")
		} else if req.Days() > MaxTripDays {
			problems = append(problems, fmt.Sprintf("trip is longer than %d days", MaxTripDays))
		}
	}
	if req.Adults < 0 || req.Children < 0 {
		problems = append(problems, "traveler counts must not be negative")
	}
	if req.Budget < 0 {
		problems = append(problems, "budget must not be negative")
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// GeneratePreview produces the short preview document.
func (s *Service) GeneratePreview(ctx context.Context, planID string, req models.TripRequest) (models.GenerationResult, error) {
	return s.generate(ctx, planID, req, models.ModePreview)
}

// GenerateFullPlan produces the complete itinerary document.
func (s *Service) GenerateFullPlan(ctx context.Context, planID string, req models.TripRequest) (models.GenerationResult, error) {
	return s.generate(ctx, planID, req, models.ModeFull)
}

// ComputeBudget is deterministic and never fails.
func (s *Service) ComputeBudget(in budget.Input) models.BudgetBreakdown {
	return s.budget.Compute(in)
}

// Advise returns booking advice for one date.
func (s *Service) Advise(q advisor.Query) models.BookingAdvisory {
	return s.advisor.Advise(q)
}

func (s *Service) generate(ctx context.Context, planID string, req models.TripRequest, mode models.Mode) (models.GenerationResult, error) {
	if err := ValidateRequest(req); err != nil {
		return models.GenerationResult{}, err
	}
	if planID == "" {
		planID = s.newID()
	}

	ctx, span := tracer.Start(ctx, "planner.generate")
	span.SetAttributes(
		attribute.String("plan.id", planID),
		attribute.String("mode", string(mode)),
		attribute.String("destination", req.Destination),
	)
	defer span.End()

	pc := s.buildContext(ctx, req, mode)
	system, user := prompt.Build(pc)

	factory := links.For(req.Destination, links.WithPartnerID(s.links.PartnerID))
	outcome := s.orchestrator.Run(ctx, orchestrator.Job{
		Request:      req,
		Mode:         mode,
		SystemPrompt: system,
		UserPrompt:   user,
		Options: pipeline.Options{
			Factory:        factory,
			ImagesDisabled: s.links.ImagesDisabled,
			Widgets:        pipeline.WidgetsFor(factory, prompt.Sections(mode)),
			Denylist:       s.links.Denylist,
		},
	})
	span.SetAttributes(
		attribute.String("provenance", string(outcome.Provenance)),
		attribute.String("failure_class", string(outcome.FailureClass)),
	)

	result := models.GenerationResult{
		ID:           planID,
		Mode:         mode,
		Content:      outcome.Content,
		Provenance:   outcome.Provenance,
		FailureClass: outcome.FailureClass,
		Elapsed:      outcome.Elapsed,
		Attempts:     outcome.Attempts,
		CreatedAt:    s.now().UTC(),
	}

	s.persist(ctx, req, result)
	return result, nil
}

// buildContext gathers budget, advisory and weather concurrently. None of them fail.
// A weather lookup still running after contextTimeout is dropped from the prompt.
func (s *Service) buildContext(ctx context.Context, req models.TripRequest, mode models.Mode) prompt.Context {
	pc := prompt.Context{Request: req, Mode: mode}

	wctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	var outlook chan weather.Outlook
	if s.weather != nil {
		outlook = make(chan weather.Outlook, 1)
		go func() { outlook <- s.weather.Outlook(wctx, req) }()
	}

	var g errgroup.Group
	g.Go(func() error {
		pc.Budget = s.budget.Compute(budget.InputFromRequest(req))
		return nil
	})
	g.Go(func() error {
		pc.Advisory = s.advisor.AdviseRange(advisor.Query{
			Destination: req.Destination,
			GroupSize:   req.Travelers(),
		}, req.Dates(MaxTripDays))
		return nil
	})
	_ = g.Wait()

	if outlook != nil {
		select {
		case pc.Weather = <-outlook:
		case <-wctx.Done():
			s.logger.Warn("Weather lookup too slow, generating without it", map[string]interface{}{
				"destination": req.Destination,
				"timeout":     s.contextTimeout.String(),
			})
		}
	}
	return pc
}

// persist writes the record in the background so storage latency never
// delays the caller. Failures are logged only.
func (s *Service) persist(ctx context.Context, req models.TripRequest, result models.GenerationResult) {
	if s.store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	rec := models.PlanRecord{
		ID:         result.ID,
		Request:    req,
		Document:   result.Content,
		Provenance: result.Provenance,
		Mode:       result.Mode,
		CreatedAt:  result.CreatedAt,
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.store.Save(ctx, rec); err != nil {
			s.logger.Warn("Plan record not stored", map[string]interface{}{
				"planId": rec.ID,
				"error":  apperrors.NewPlanStoreError(s.store.Name(), err).Error(),
			})
		}
	}()
}

// Flush blocks until every background plan write has finished.
func (s *Service) Flush() {
	s.pending.Wait()
}
