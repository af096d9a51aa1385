// internal/planner/service/service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/advisor"
	"itinerary-workers/internal/planner/budget"
	"itinerary-workers/internal/planner/fallback"
	"itinerary-workers/internal/planner/llm"
	"itinerary-workers/internal/planner/orchestrator"
	"itinerary-workers/internal/planner/pipeline"
	"itinerary-workers/internal/planner/weather"
)

const aiDoc = `<h2>Trip Overview</h2>
<p>Five days of cafes and galleries, starting at <a href="map:Louvre Museum">the Louvre</a>.</p>
<h2>Where to Stay</h2>
<p>Le Marais keeps most sights walkable.</p>`

type captureRunner struct {
	mu   sync.Mutex
	jobs []orchestrator.Job
	out  orchestrator.Outcome
}

func (r *captureRunner) Run(ctx context.Context, job orchestrator.Job) orchestrator.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	out := r.out
	out.Mode = job.Mode
	return out
}

type fixedWeather struct{ summary string }

func (w fixedWeather) Outlook(ctx context.Context, req models.TripRequest) weather.Outlook {
	return weather.Outlook{Destination: req.Destination, Source: weather.SourceSeasonal, Summary: w.summary}
}

type memoryStore struct {
	mu      sync.Mutex
	records []models.PlanRecord
	err     error
}

func (m *memoryStore) Name() string { return "memory" }

func (m *memoryStore) Save(ctx context.Context, rec models.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

type generatorFunc func(ctx context.Context, req llm.Request) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req llm.Request) (string, error) {
	return f(ctx, req)
}

func parisRequest() models.TripRequest {
	return models.TripRequest{
		Destination: "Paris, France",
		StartDate:   "2026-07-10",
		EndDate:     "2026-07-14",
		Adults:      2,
		Style:       models.StyleMid,
		Currency:    "EUR",
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.TripRequest)
		problem string
	}{
		{name: "valid", mutate: func(r *models.TripRequest) {}},
		{name: "blank destination", mutate: func(r *models.TripRequest) { r.Destination = "  " }, problem: "destination is required"},
		{name: "bad start", mutate: func(r *models.TripRequest) { r.StartDate = "10/07/2026" }, problem: "startDate must be"},
		{name: "bad end", mutate: func(r *models.TripRequest) { r.EndDate = "" }, problem: "endDate must be"},
		{name: "end before start", mutate: func(r *models.TripRequest) { r.EndDate = "2026-07-01" }, problem: "endDate is before startDate"},
		{name: "too long", mutate: func(r *models.TripRequest) { r.EndDate = "2027-08-01" }, problem: "longer than 365 days"},
		{name: "negative adults", mutate: func(r *models.TripRequest) { r.Adults = -1 }, problem: "traveler counts"},
		{name: "negative budget", mutate: func(r *models.TripRequest) { r.Budget = -10 }, problem: "budget must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := parisRequest()
			tt.mutate(&req)

			err := ValidateRequest(req)
			if tt.problem == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.problem)
		})
	}
}

func TestGenerate_BuildsJob(t *testing.T) {
	runner := &captureRunner{out: orchestrator.Outcome{Content: aiDoc, Provenance: models.ProvenanceAI, Attempts: 1}}
	st := &memoryStore{}
	svc := New(Dependencies{
		Orchestrator: runner,
		Weather:      fixedWeather{summary: "Warm and mostly dry, highs around 25C."},
		Store:        st,
		Links:        LinkOptions{PartnerID: "tripgen-42", ImagesDisabled: true},
		Logger:       logger.NewTestLogger(t),
	})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	result, err := svc.GenerateFullPlan(context.Background(), "plan-1", parisRequest())
	require.NoError(t, err)

	assert.Equal(t, "plan-1", result.ID)
	assert.Equal(t, models.ModeFull, result.Mode)
	assert.Equal(t, models.ProvenanceAI, result.Provenance)
	assert.Equal(t, aiDoc, result.Content)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), result.CreatedAt)

	require.Len(t, runner.jobs, 1)
	job := runner.jobs[0]
	assert.Equal(t, models.ModeFull, job.Mode)
	assert.NotEmpty(t, job.SystemPrompt)
	assert.Contains(t, job.UserPrompt, "Paris, France")
	assert.Contains(t, job.UserPrompt, "EUR")
	assert.Contains(t, job.UserPrompt, "Warm and mostly dry")
	require.NotNil(t, job.Options.Factory)
	assert.True(t, job.Options.ImagesDisabled)

	svc.Flush()
	require.Len(t, st.records, 1)
	assert.Equal(t, "plan-1", st.records[0].ID)
	assert.Equal(t, aiDoc, st.records[0].Document)
	assert.Equal(t, models.ProvenanceAI, st.records[0].Provenance)
}

func TestGenerate_AssignsID(t *testing.T) {
	runner := &captureRunner{out: orchestrator.Outcome{Content: aiDoc, Provenance: models.ProvenanceAI}}
	svc := New(Dependencies{Orchestrator: runner, Logger: logger.NewTestLogger(t)})
	svc.newID = func() string { return "generated-id" }

	result, err := svc.GeneratePreview(context.Background(), "", parisRequest())
	require.NoError(t, err)
	assert.Equal(t, "generated-id", result.ID)
	assert.Equal(t, models.ModePreview, result.Mode)
}

func TestGenerate_InvalidRequestNeverRuns(t *testing.T) {
	runner := &captureRunner{}
	svc := New(Dependencies{Orchestrator: runner, Logger: logger.NewTestLogger(t)})

	req := parisRequest()
	req.Destination = ""
	_, err := svc.GeneratePreview(context.Background(), "p", req)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
	assert.Empty(t, runner.jobs)
}

func TestGenerate_StoreFailureIsNotSurfaced(t *testing.T) {
	runner := &captureRunner{out: orchestrator.Outcome{Content: aiDoc, Provenance: models.ProvenanceAI}}
	svc := New(Dependencies{
		Orchestrator: runner,
		Store:        &memoryStore{err: errors.New("connection refused")},
		Logger:       logger.NewTestLogger(t),
	})

	result, err := svc.GenerateFullPlan(context.Background(), "p", parisRequest())
	require.NoError(t, err)
	assert.Equal(t, aiDoc, result.Content)
	svc.Flush()
}

type slowWeather struct{ delay time.Duration }

func (w slowWeather) Outlook(ctx context.Context, req models.TripRequest) weather.Outlook {
	time.Sleep(w.delay)
	return weather.Outlook{Destination: req.Destination, Source: weather.SourceForecast, Summary: "late forecast"}
}

type slowStore struct {
	memoryStore
	delay time.Duration
}

func (s *slowStore) Save(ctx context.Context, rec models.PlanRecord) error {
	time.Sleep(s.delay)
	return s.memoryStore.Save(ctx, rec)
}

func TestGeneratePreview_BoundedBySlowDependencies(t *testing.T) {
	const (
		previewTimeout = 200 * time.Millisecond
		overhead       = 100 * time.Millisecond
		contextTimeout = 50 * time.Millisecond
	)
	hung := func(ctx context.Context, req llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	orch := orchestrator.New(orchestrator.Config{
		Concurrency:  1,
		QueueSize:    1,
		RetryBackoff: 5 * time.Millisecond,
		Overhead:     overhead,
		Preview:      orchestrator.ModeLimits{Timeout: previewTimeout, MaxTokens: 1500},
		Full:         orchestrator.ModeLimits{Timeout: time.Second, MaxTokens: 6000},
	}, generatorFunc(hung), fallback.New(nil), pipeline.New(nil), nil, logger.NewTestLogger(t))
	t.Cleanup(orch.Close)

	st := &slowStore{delay: 600 * time.Millisecond}
	svc := New(Dependencies{
		Orchestrator:   orch,
		Weather:        slowWeather{delay: 600 * time.Millisecond},
		Store:          st,
		ContextTimeout: contextTimeout,
		Logger:         logger.NewTestLogger(t),
	})

	start := time.Now()
	result, err := svc.GeneratePreview(context.Background(), "slow", parisRequest())
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Less(t, elapsed, previewTimeout+overhead+contextTimeout+150*time.Millisecond)
	assert.Equal(t, models.ProvenanceFallback, result.Provenance)
	assert.Contains(t, result.Content, "Paris")

	svc.Flush()
	require.Len(t, st.records, 1)
	assert.Equal(t, "slow", st.records[0].ID)
}

func TestBuildContext_KeepsFastWeather(t *testing.T) {
	svc := New(Dependencies{
		Orchestrator: &captureRunner{},
		Weather:      fixedWeather{summary: "Sunny"},
		Logger:       logger.NewTestLogger(t),
	})

	pc := svc.buildContext(context.Background(), parisRequest(), models.ModePreview)
	assert.Equal(t, "Sunny", pc.Weather.Summary)
	assert.Greater(t, pc.Budget.Total, 0.0)
}

func TestGenerate_EndToEnd(t *testing.T) {
	tests := []struct {
		name       string
		mode       models.Mode
		gen        generatorFunc
		provenance models.Provenance
		class      models.FailureClass
	}{
		{
			name: "provider document",
			mode: models.ModeFull,
			gen: func(ctx context.Context, req llm.Request) (string, error) {
				return aiDoc, nil
			},
			provenance: models.ProvenanceAI,
		},
		{
			name: "generic document falls back",
			mode: models.ModeFull,
			gen: func(ctx context.Context, req llm.Request) (string, error) {
				return `<h2>Trip Overview</h2><p>Lorem ipsum for [Destination].</p>`, nil
			},
			provenance: models.ProvenanceFallback,
			class:      models.FailureGenericContent,
		},
		{
			name:       "disabled provider falls back",
			mode:       models.ModePreview,
			gen:        llm.Disabled{}.Generate,
			provenance: models.ProvenanceFallback,
			class:      models.FailureTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := orchestrator.New(orchestrator.Config{
				Concurrency:  1,
				QueueSize:    2,
				RetryBackoff: 5 * time.Millisecond,
				Overhead:     100 * time.Millisecond,
				Preview:      orchestrator.ModeLimits{Timeout: time.Second, MaxTokens: 1500},
				Full:         orchestrator.ModeLimits{Timeout: time.Second, MaxTokens: 6000},
			}, tt.gen, fallback.New(nil), pipeline.New(nil), nil, logger.NewTestLogger(t))
			t.Cleanup(orch.Close)

			st := &memoryStore{}
			svc := New(Dependencies{Orchestrator: orch, Store: st, Logger: logger.NewTestLogger(t)})

			result, err := svc.generate(context.Background(), "e2e", parisRequest(), tt.mode)
			require.NoError(t, err)

			assert.Equal(t, tt.provenance, result.Provenance)
			assert.Equal(t, tt.class, result.FailureClass)
			assert.Contains(t, result.Content, models.SectionOverview)
			assert.NotContains(t, strings.ToLower(result.Content), "lorem ipsum")
			svc.Flush()
			require.Len(t, st.records, 1)
			assert.Equal(t, tt.provenance, st.records[0].Provenance)
		})
	}
}

func TestGeneratePreview_OnlyPreviewSectionWidgets(t *testing.T) {
	orch := orchestrator.New(orchestrator.Config{
		Concurrency:  1,
		QueueSize:    1,
		RetryBackoff: 5 * time.Millisecond,
		Overhead:     100 * time.Millisecond,
		Preview:      orchestrator.ModeLimits{Timeout: time.Second, MaxTokens: 1500},
		Full:         orchestrator.ModeLimits{Timeout: time.Second, MaxTokens: 6000},
	}, llm.Disabled{}, fallback.New(nil), pipeline.New(nil), nil, logger.NewTestLogger(t))
	t.Cleanup(orch.Close)
	svc := New(Dependencies{Orchestrator: orch, Logger: logger.NewTestLogger(t)})

	preview, err := svc.GeneratePreview(context.Background(), "p", parisRequest())
	require.NoError(t, err)
	require.Equal(t, models.ProvenanceFallback, preview.Provenance)
	assert.NotContains(t, preview.Content, "<h2>"+models.SectionTransport+"</h2>")
	assert.NotContains(t, preview.Content, "<h2>"+models.SectionTips+"</h2>")
	assert.NotContains(t, preview.Content, `id="`+pipeline.WidgetInsurance+`"`)
	assert.NotContains(t, preview.Content, `id="`+pipeline.WidgetCars+`"`)
	assert.Contains(t, preview.Content, `id="`+pipeline.WidgetHotels+`"`)
	assert.Contains(t, preview.Content, `id="`+pipeline.WidgetActivities+`"`)

	full, err := svc.GenerateFullPlan(context.Background(), "f", parisRequest())
	require.NoError(t, err)
	assert.Contains(t, full.Content, `id="`+pipeline.WidgetInsurance+`"`)
	assert.Contains(t, full.Content, `id="`+pipeline.WidgetTransfers+`"`)
}

func TestComputeBudgetAndAdvise(t *testing.T) {
	svc := New(Dependencies{Orchestrator: &captureRunner{}})

	b := svc.ComputeBudget(budget.Input{Destination: "Paris", Days: 4, Travelers: 2, Style: models.StyleMid})
	assert.Equal(t, 4, b.Days)
	assert.Equal(t, 2, b.Travelers)
	assert.InDelta(t, b.Total, b.CategoryTotal(), 0.05)

	advice := svc.Advise(advisor.Query{
		Destination: "Paris, France",
		Date:        time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
		GroupSize:   2,
	})
	assert.Equal(t, "FR", advice.Country)
	assert.NotEmpty(t, advice.Warnings)
}
