// internal/workers/itinerary/generate-trip-plan/handler_test.go
package generatetripplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinerary-workers/internal/common/camunda"
	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/fallback"
	"itinerary-workers/internal/planner/llm"
	"itinerary-workers/internal/planner/orchestrator"
	"itinerary-workers/internal/planner/pipeline"
	"itinerary-workers/internal/planner/service"
)

type stubPlanner struct {
	result models.GenerationResult
	err    error
	got    models.TripRequest
}

func (s *stubPlanner) GenerateFullPlan(ctx context.Context, planID string, req models.TripRequest) (models.GenerationResult, error) {
	s.got = req
	if s.err != nil {
		return models.GenerationResult{}, s.err
	}
	out := s.result
	out.ID = planID
	return out, nil
}

type docGenerator string

func (d docGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	if d == "" {
		return "", llm.ErrEmptyResponse
	}
	return string(d), nil
}

func createTestInput() *Input {
	return &Input{
		PlanID: "plan-77",
		TripRequest: models.TripRequest{
			Destination: "Kyoto, Japan",
			StartDate:   "2026-11-03",
			EndDate:     "2026-11-06",
			Adults:      2,
			Style:       models.StyleMid,
		},
	}
}

func TestHandler_Execute(t *testing.T) {
	planner := &stubPlanner{result: models.GenerationResult{
		Mode:         models.ModeFull,
		Content:      "<h2>Trip Overview</h2><p>Temples and tea houses.</p>",
		Provenance:   models.ProvenanceFallback,
		FailureClass: models.FailureTimeout,
		Elapsed:      1500 * time.Millisecond,
		Attempts:     1,
	}}
	h := NewHandler(nil, planner, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, "plan-77", out.PlanID)
	assert.Equal(t, "fallback", out.Provenance)
	assert.Equal(t, "timeout", out.FailureClass)
	assert.Equal(t, int64(1500), out.ElapsedMs)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, "Kyoto, Japan", planner.got.Destination)
}

func TestHandler_Execute_ValidationError(t *testing.T) {
	planner := &stubPlanner{err: apperrors.NewValidationError("endDate is before startDate")}
	h := NewHandler(nil, planner, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), createTestInput())
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
}

func TestHandler_Execute_WithPlanner(t *testing.T) {
	tests := []struct {
		name       string
		generator  docGenerator
		provenance string
		class      string
	}{
		{
			name:       "provider document",
			generator:  "<h2>Trip Overview</h2><p>Four autumn days around <a href=\"map:Fushimi Inari Taisha\">Fushimi Inari</a>.</p>",
			provenance: "ai",
		},
		{
			name:       "empty document",
			generator:  "",
			provenance: "fallback",
			class:      "empty-response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := orchestrator.New(orchestrator.Config{
				Concurrency:  1,
				QueueSize:    1,
				RetryBackoff: 5 * time.Millisecond,
				Full:         orchestrator.ModeLimits{Timeout: time.Second, MaxTokens: 6000},
			}, tt.generator, fallback.New(nil), pipeline.New(nil), nil, logger.NewTestLogger(t))
			t.Cleanup(orch.Close)

			svc := service.New(service.Dependencies{Orchestrator: orch, Logger: logger.NewTestLogger(t)})
			h := NewHandler(&Config{Timeout: 5 * time.Second}, svc, nil, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), createTestInput())
			require.NoError(t, err)
			assert.Equal(t, "plan-77", out.PlanID)
			assert.Equal(t, tt.provenance, out.Provenance)
			assert.Equal(t, tt.class, out.FailureClass)
			assert.Contains(t, out.Content, models.SectionOverview)
		})
	}
}

func TestInput_MatchesRegisteredSchema(t *testing.T) {
	var in Input
	err := camunda.DecodeVariables(`{"planId":"p","tripRequest":{"destination":"Kyoto","startDate":"2026-11-03","endDate":"2026-11-06","style":"luxury"}}`, TaskType, &in)
	require.NoError(t, err)
	assert.Equal(t, models.StyleLuxury, in.TripRequest.Style)

	err = camunda.DecodeVariables(`{"tripRequest":{"destination":"","startDate":"2026-11-03","endDate":"2026-11-06"}}`, TaskType, &in)
	assert.Error(t, err)
}
