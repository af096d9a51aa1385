// internal/models/trip.go
package models

import (
	"strings"
	"time"
)

// DateLayout is the wire format of trip dates.
const DateLayout = "2006-01-02"

type Style string

const (
	StyleBudget Style = "budget"
	StyleMid    Style = "mid"
	StyleLuxury Style = "luxury"
)

// ParseStyle maps free text onto a style tier; unknown values resolve to mid.
func ParseStyle(s string) Style {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "budget", "backpacker", "economy", "cheap":
		return StyleBudget
	case "luxury", "premium", "high-end":
		return StyleLuxury
	default:
		return StyleMid
	}
}

// TripRequest is immutable for the lifetime of one generation.
type TripRequest struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Adults      int     `json:"adults"`
	Children    int     `json:"children,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Style       Style   `json:"style,omitempty"`
	Preferences string  `json:"preferences,omitempty"`
	Dietary     string  `json:"dietary,omitempty"`
	Purpose     string  `json:"purpose,omitempty"`
}

// Start returns the parsed start date.
func (r TripRequest) Start() (time.Time, error) {
	return time.Parse(DateLayout, r.StartDate)
}

// End returns the parsed end date.
func (r TripRequest) End() (time.Time, error) {
	return time.Parse(DateLayout, r.EndDate)
}

// Days is the inclusive day count, never below 1.
func (r TripRequest) Days() int {
	start, err := r.Start()
	if err != nil {
		return 1
	}
	end, err := r.End()
	if err != nil || end.Before(start) {
		return 1
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Travelers is adults plus children, never below 1.
func (r TripRequest) Travelers() int {
	if n := r.Adults + r.Children; n > 0 {
		return n
	}
	return 1
}

// CurrencyOrDefault returns the request currency, USD when unset.
func (r TripRequest) CurrencyOrDefault() string {
	if r.Currency == "" {
		return "USD"
	}
	return strings.ToUpper(r.Currency)
}

// Dates lists every calendar day of the trip, capped at max entries.
func (r TripRequest) Dates(max int) []time.Time {
	start, err := r.Start()
	if err != nil {
		return nil
	}
	n := r.Days()
	if max > 0 && n > max {
		n = max
	}
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}
