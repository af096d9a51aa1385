// internal/models/advisory.go
package models

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyModerate Urgency = "moderate"
	UrgencyUrgent   Urgency = "urgent"
)

type BookingAdvisory struct {
	Country         string   `json:"country,omitempty"`
	Warnings        []string `json:"warnings"`
	Opportunities   []string `json:"opportunities"`
	Recommendations []string `json:"recommendations"`
	Priority        Priority `json:"priority"`
	Urgency         Urgency  `json:"urgency"`
}

// Empty reports whether the advisory carries no text at all.
func (a BookingAdvisory) Empty() bool {
	return len(a.Warnings) == 0 && len(a.Opportunities) == 0 && len(a.Recommendations) == 0
}
