// internal/workers/itinerary/generate-trip-plan/models.go
package generatetripplan

import "itinerary-workers/internal/models"

type Input struct {
	PlanID      string             `json:"planId"`
	TripRequest models.TripRequest `json:"tripRequest"`
}

type Output struct {
	PlanID       string `json:"planId"`
	Content      string `json:"content"`
	Provenance   string `json:"provenance"`
	FailureClass string `json:"failureClass,omitempty"`
	ElapsedMs    int64  `json:"elapsedMs"`
	Attempts     int    `json:"attempts"`
}
