// internal/planner/fallback/synthesizer_test.go
package fallback

import (
	"html"
	"strings"
	"testing"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/links"
	"itinerary-workers/internal/planner/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisRequest() models.TripRequest {
	return models.TripRequest{
		Destination: "Paris, France",
		StartDate:   "2026-07-10",
		EndDate:     "2026-07-14",
		Adults:      2,
		Style:       models.StyleMid,
		Dietary:     "vegetarian",
	}
}

func TestSynthesize_FullCoversEverySection(t *testing.T) {
	doc := New(nil).Synthesize(parisRequest(), models.ModeFull)

	for _, s := range models.CanonicalSections {
		assert.Contains(t, doc, "<h2>"+html.EscapeString(s)+"</h2>", s)
	}
	assert.Equal(t, 5, strings.Count(doc, "<h3>Day "))
	assert.Contains(t, doc, "Day 1: Friday, Jul 10")
	assert.Contains(t, doc, "Eiffel Tower")
	assert.Contains(t, doc, `href="map:`)
	assert.Contains(t, doc, `src="image:`)
	assert.Contains(t, doc, "USD 2340")
	assert.Contains(t, doc, "vegetarian")
	assert.Contains(t, doc, "Layers for mild days")
}

func TestSynthesize_Deterministic(t *testing.T) {
	s := New(nil)
	assert.Equal(t, s.Synthesize(parisRequest(), models.ModeFull), s.Synthesize(parisRequest(), models.ModeFull))
}

func TestSynthesize_Preview(t *testing.T) {
	doc := New(nil).Synthesize(parisRequest(), models.ModePreview)

	assert.Contains(t, doc, "<h2>Trip Overview</h2>")
	assert.Contains(t, doc, "<h2>Daily Itinerary</h2>")
	assert.Equal(t, 2, strings.Count(doc, "<h3>Day "))
	assert.NotContains(t, doc, "<h2>Packing List</h2>")
	assert.Contains(t, doc, "all 5 days")
}

func TestSynthesize_UnknownDestination(t *testing.T) {
	req := models.TripRequest{Destination: "Atlantis", StartDate: "2026-03-01", EndDate: "2026-03-03", Adults: 1}
	doc := New(nil).Synthesize(req, models.ModeFull)

	assert.Contains(t, doc, "General suggestions for Atlantis")
	assert.Contains(t, doc, "Atlantis old town")
	assert.Equal(t, 3, strings.Count(doc, "<h3>Day "))
}

func TestSynthesize_CapsDays(t *testing.T) {
	req := models.TripRequest{Destination: "Rome", StartDate: "2026-01-01", EndDate: "2026-03-31", Adults: 1}
	doc := New(nil).Synthesize(req, models.ModeFull)
	assert.Equal(t, MaxDays, strings.Count(doc, "<h3>Day "))
}

func TestSynthesize_EscapesInput(t *testing.T) {
	req := models.TripRequest{Destination: `<script>alert(1)</script>`, Adults: 1, Preferences: `"quotes" & <tags>`}
	doc := New(nil).Synthesize(req, models.ModeFull)
	assert.NotContains(t, doc, "<script>")
	assert.NotContains(t, doc, "<tags>")
}

func TestSynthesize_EquipmentPacking(t *testing.T) {
	req := models.TripRequest{Destination: "Zermatt", StartDate: "2026-01-10", EndDate: "2026-01-15", Adults: 2, Purpose: "ski holiday"}
	doc := New(nil).Synthesize(req, models.ModeFull)
	assert.Contains(t, doc, "Gear for skiing")
	assert.Contains(t, doc, "Warm coat")
	assert.Contains(t, doc, "<td>Equipment</td>")
}

func TestSynthesize_PassesPipeline(t *testing.T) {
	doc := New(nil).Synthesize(parisRequest(), models.ModeFull)

	out, err := pipeline.New(nil).Process(doc, pipeline.Options{Factory: links.For("Paris, France")})
	require.NoError(t, err)
	assert.NotContains(t, out, `href="map:`)
	assert.NotContains(t, out, `src="image:`)
	assert.Equal(t, 1, strings.Count(out, `data-dedup-key="hotels"`))
}
