// internal/models/budget.go
package models

// CostTier classifies destinations by price level.
type CostTier string

const (
	CostTierVeryHigh CostTier = "very-high"
	CostTierHigh     CostTier = "high"
	CostTierModerate CostTier = "moderate"
	CostTierLow      CostTier = "low"
)

type CategoryAmount struct {
	PerDay  float64 `json:"perDay"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
}

type EquipmentSurcharge struct {
	Activity    string  `json:"activity"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// BudgetBreakdown splits a resolved total across spending categories. Food PerDay is per
// person; the other categories are household figures.
type BudgetBreakdown struct {
	Total      float64             `json:"total"`
	Currency   string              `json:"currency"`
	Days       int                 `json:"days"`
	Travelers  int                 `json:"travelers"`
	Style      Style               `json:"style"`
	CostTier   CostTier            `json:"costTier"`
	Derived    bool                `json:"derived"`
	Stay       CategoryAmount      `json:"stay"`
	Food       CategoryAmount      `json:"food"`
	Activities CategoryAmount      `json:"activities"`
	Transit    CategoryAmount      `json:"transit"`
	Equipment  CategoryAmount      `json:"equipment"`
	Surcharge  *EquipmentSurcharge `json:"surcharge,omitempty"`
}

// CategoryTotal sums the category totals.
func (b BudgetBreakdown) CategoryTotal() float64 {
	return b.Stay.Total + b.Food.Total + b.Activities.Total + b.Transit.Total + b.Equipment.Total
}

// PercentTotal sums the category shares.
func (b BudgetBreakdown) PercentTotal() float64 {
	return b.Stay.Percent + b.Food.Percent + b.Activities.Percent + b.Transit.Percent + b.Equipment.Percent
}
