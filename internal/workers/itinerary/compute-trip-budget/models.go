// internal/workers/itinerary/compute-trip-budget/models.go
package computetripbudget

import (
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/budget"
)

// Input carries the engine input as process variables: total, days, style, travelers,
// destination, purpose and currency.
type Input = budget.Input

type Output struct {
	Budget models.BudgetBreakdown `json:"budget"`
}
