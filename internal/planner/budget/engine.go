// internal/planner/budget/engine.go
package budget

import (
	"fmt"
	"math"
	"strings"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/destinations"
)

// MaxEquipmentDays caps how many days of equipment hire are charged.
const MaxEquipmentDays = 7

var baseRates = map[models.Style]float64{
	models.StyleBudget: 80,
	models.StyleMid:    180,
	models.StyleLuxury: 450,
}

var tierMultipliers = map[models.CostTier]float64{
	models.CostTierVeryHigh: 1.6,
	models.CostTierHigh:     1.3,
	models.CostTierModerate: 1.0,
	models.CostTierLow:      0.6,
}

// shares are stay, food, activities, transit.
var splits = map[models.Style][4]float64{
	models.StyleBudget: {0.35, 0.25, 0.15, 0.25},
	models.StyleMid:    {0.40, 0.25, 0.20, 0.15},
	models.StyleLuxury: {0.50, 0.20, 0.20, 0.10},
}

const (
	minEquipmentShare = 0.05
	maxEquipmentShare = 0.25
)

// Catalog is the slice of destination knowledge the engine needs.
type Catalog interface {
	CostTier(destination string) models.CostTier
	EquipmentFor(texts ...string) (destinations.EquipmentRule, bool)
}

type Input struct {
	Total       float64      `json:"total"`
	Days        int          `json:"days"`
	Style       models.Style `json:"style"`
	Travelers   int          `json:"travelers"`
	Destination string       `json:"destination"`
	Purpose     string       `json:"purpose,omitempty"`
	Currency    string       `json:"currency,omitempty"`
}

// InputFromRequest maps a trip request onto engine input.
func InputFromRequest(req models.TripRequest) Input {
	return Input{
		Total:       req.Budget,
		Days:        req.Days(),
		Style:       req.Style,
		Travelers:   req.Travelers(),
		Destination: req.Destination,
		Purpose:     req.Purpose,
		Currency:    req.CurrencyOrDefault(),
	}
}

type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	if catalog == nil {
		catalog = destinations.Default()
	}
	return &Engine{catalog: catalog}
}

// Compute resolves a total and splits it across categories. It is deterministic.
func (e *Engine) Compute(in Input) models.BudgetBreakdown {
	days := in.Days
	if days < 1 {
		days = 1
	}
	travelers := in.Travelers
	if travelers < 1 {
		travelers = 1
	}
	style := models.ParseStyle(string(in.Style))
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = "USD"
	}
	tier := e.catalog.CostTier(in.Destination)

	surcharge := e.surcharge(in.Destination, in.Purpose, currency, days, travelers)

	total := in.Total
	derived := false
	if total <= 0 {
		derived = true
		total = baseRates[style] * tierMultipliers[tier] * PurposeMultiplier(in.Purpose) *
			float64(days) * float64(travelers)
		if surcharge != nil {
			total += surcharge.Amount
		}
	}

	shares := splits[style]
	equipmentShare := 0.0
	if surcharge != nil && total > 0 {
		equipmentShare = clamp(surcharge.Amount/total, minEquipmentShare, maxEquipmentShare)
		for i := range shares {
			shares[i] *= 1 - equipmentShare
		}
	}

	resolved := math.Round(total)
	stay := math.Round(resolved * shares[0])
	food := math.Round(resolved * shares[1])
	activities := math.Round(resolved * shares[2])
	transit := math.Round(resolved * shares[3])
	equipment := math.Round(resolved * equipmentShare)
	stay += resolved - (stay + food + activities + transit + equipment)

	perDay := func(amount float64) float64 { return round2(amount / float64(days)) }

	return models.BudgetBreakdown{
		Total:      resolved,
		Currency:   currency,
		Days:       days,
		Travelers:  travelers,
		Style:      style,
		CostTier:   tier,
		Derived:    derived,
		Stay:       models.CategoryAmount{PerDay: perDay(stay), Total: stay, Percent: shares[0]},
		Food:       models.CategoryAmount{PerDay: round2(food / float64(days) / float64(travelers)), Total: food, Percent: shares[1]},
		Activities: models.CategoryAmount{PerDay: perDay(activities), Total: activities, Percent: shares[2]},
		Transit:    models.CategoryAmount{PerDay: perDay(transit), Total: transit, Percent: shares[3]},
		Equipment:  models.CategoryAmount{PerDay: perDay(equipment), Total: equipment, Percent: equipmentShare},
		Surcharge:  surcharge,
	}
}

func (e *Engine) surcharge(destination, purpose, currency string, days, travelers int) *models.EquipmentSurcharge {
	rule, ok := e.catalog.EquipmentFor(destination, purpose)
	if !ok {
		return nil
	}
	equipmentDays := days
	if equipmentDays > MaxEquipmentDays {
		equipmentDays = MaxEquipmentDays
	}
	amount := rule.Rate * float64(travelers) * float64(equipmentDays)
	return &models.EquipmentSurcharge{
		Activity: rule.Activity,
		Amount:   amount,
		Description: fmt.Sprintf("%s: %.0f %s per traveler per day for %d traveler(s) over %d day(s)",
			rule.Label, rule.Rate, currency, travelers, equipmentDays),
	}
}

// PurposeMultiplier scales the synthetic total by trip purpose.
func PurposeMultiplier(purpose string) float64 {
	p := strings.ToLower(purpose)
	switch {
	case strings.Contains(p, "business"):
		return 1.3
	case strings.Contains(p, "honeymoon"):
		return 1.2
	case strings.Contains(p, "day-trip"), strings.Contains(p, "day trip"), strings.Contains(p, "daytrip"):
		return 0.7
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
