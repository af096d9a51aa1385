// internal/planner/budget/engine_test.go
package budget

import (
	"testing"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/destinations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine {
	return NewEngine(destinations.Default())
}

func assertBalanced(t *testing.T, b models.BudgetBreakdown) {
	t.Helper()
	assert.Equal(t, b.Total, b.CategoryTotal(), "category totals must sum to the resolved total")
	assert.InDelta(t, 1.0, b.PercentTotal(), 1e-9)
}

func TestCompute_ParisScenario(t *testing.T) {
	b := newEngine().Compute(Input{Destination: "Paris, France", Days: 5, Style: models.StyleMid, Travelers: 2})

	// 180 mid x 1.3 high tier x 5 days x 2 travelers
	assert.Equal(t, 2340.0, b.Total)
	assert.True(t, b.Derived)
	assert.Equal(t, models.CostTierHigh, b.CostTier)
	assert.Nil(t, b.Surcharge)
	assert.Equal(t, 936.0, b.Stay.Total)
	assert.Equal(t, 585.0, b.Food.Total)
	assert.Equal(t, 468.0, b.Activities.Total)
	assert.Equal(t, 351.0, b.Transit.Total)
	assert.Equal(t, 0.0, b.Equipment.Total)
	assert.Equal(t, 187.2, b.Stay.PerDay)
	assert.Equal(t, 58.5, b.Food.PerDay)
	assertBalanced(t, b)
}

func TestCompute_CallerTotalNotInflated(t *testing.T) {
	b := newEngine().Compute(Input{Total: 3000, Destination: "Zermatt", Days: 4, Style: models.StyleLuxury, Travelers: 2})

	require.NotNil(t, b.Surcharge)
	assert.False(t, b.Derived)
	assert.Equal(t, 3000.0, b.Total)
	assert.Equal(t, "skiing", b.Surcharge.Activity)
	// 45 x 2 travelers x 4 days
	assert.Equal(t, 360.0, b.Surcharge.Amount)
	assert.InDelta(t, 0.12, b.Equipment.Percent, 1e-9)
	assert.Equal(t, 360.0, b.Equipment.Total)
	assertBalanced(t, b)
}

func TestCompute_SurchargeDaysCapped(t *testing.T) {
	b := newEngine().Compute(Input{Destination: "Bali", Purpose: "scuba diving", Days: 14, Style: models.StyleBudget, Travelers: 1})

	require.NotNil(t, b.Surcharge)
	assert.Equal(t, 60.0*7, b.Surcharge.Amount)
	// 80 x 0.6 low tier x 14 days + surcharge
	assert.Equal(t, 80*0.6*14+420, b.Total)
	assertBalanced(t, b)
}

func TestCompute_EquipmentShareClamped(t *testing.T) {
	b := newEngine().Compute(Input{Total: 500, Destination: "Serengeti safari", Days: 7, Style: models.StyleMid, Travelers: 4})

	require.NotNil(t, b.Surcharge)
	assert.Equal(t, 0.25, b.Equipment.Percent)
	assertBalanced(t, b)

	b = newEngine().Compute(Input{Total: 100000, Destination: "Whistler", Days: 1, Style: models.StyleMid, Travelers: 1})
	assert.Equal(t, 0.05, b.Equipment.Percent)
	assertBalanced(t, b)
}

func TestCompute_Sums(t *testing.T) {
	inputs := []Input{
		{Total: 1234.56, Days: 3, Style: models.StyleBudget, Travelers: 1, Destination: "Lisbon"},
		{Total: 999, Days: 7, Style: models.StyleLuxury, Travelers: 3, Destination: "Tokyo"},
		{Total: 0, Days: 0, Style: "weird", Travelers: 0, Destination: ""},
		{Total: 7, Days: 10, Style: models.StyleMid, Travelers: 5, Destination: "Bangkok"},
		{Total: 0, Days: 12, Style: models.StyleMid, Travelers: 2, Destination: "Kilimanjaro trek", Purpose: "honeymoon"},
	}
	for _, in := range inputs {
		b := newEngine().Compute(in)
		assertBalanced(t, b)
		assert.GreaterOrEqual(t, b.Days, 1)
		assert.GreaterOrEqual(t, b.Travelers, 1)
	}
}

func TestCompute_DerivedMonotonic(t *testing.T) {
	e := newEngine()
	prev := 0.0
	for days := 1; days <= 20; days++ {
		b := e.Compute(Input{Destination: "Zermatt", Days: days, Style: models.StyleMid, Travelers: 2})
		assert.Greater(t, b.Total, prev, "days=%d", days)
		prev = b.Total
	}

	prev = 0
	for travelers := 1; travelers <= 10; travelers++ {
		b := e.Compute(Input{Destination: "Rome", Days: 3, Style: models.StyleBudget, Travelers: travelers})
		assert.Greater(t, b.Total, prev, "travelers=%d", travelers)
		prev = b.Total
	}
}

func TestCompute_Defaults(t *testing.T) {
	b := newEngine().Compute(Input{Days: -3, Travelers: -1, Style: "unknown"})
	assert.Equal(t, 1, b.Days)
	assert.Equal(t, 1, b.Travelers)
	assert.Equal(t, models.StyleMid, b.Style)
	assert.Equal(t, models.CostTierModerate, b.CostTier)
	assert.Equal(t, "USD", b.Currency)
	assert.Equal(t, 180.0, b.Total)
}

func TestCompute_Deterministic(t *testing.T) {
	in := Input{Destination: "Barcelona", Days: 4, Style: models.StyleLuxury, Travelers: 3, Purpose: "business", Currency: "eur"}
	assert.Equal(t, newEngine().Compute(in), newEngine().Compute(in))
}

func TestPurposeMultiplier(t *testing.T) {
	tests := map[string]float64{
		"Business conference": 1.3,
		"honeymoon":           1.2,
		"day trip":            0.7,
		"Day-Trip":            0.7,
		"family vacation":     1.0,
		"":                    1.0,
	}
	for purpose, want := range tests {
		assert.Equal(t, want, PurposeMultiplier(purpose), purpose)
	}
}

func TestInputFromRequest(t *testing.T) {
	req := models.TripRequest{Destination: "Paris", StartDate: "2026-07-10", EndDate: "2026-07-14", Adults: 2, Children: 1, Budget: 2500}
	in := InputFromRequest(req)
	assert.Equal(t, 5, in.Days)
	assert.Equal(t, 3, in.Travelers)
	assert.Equal(t, "USD", in.Currency)
	assert.Equal(t, 2500.0, in.Total)
}
