// internal/workers/itinerary/advise-trip-booking/models.go
package advisetripbooking

import "itinerary-workers/internal/models"

type Input struct {
	Destination  string `json:"destination"`
	ActivityType string `json:"activityType,omitempty"`
	Date         string `json:"date"`
	TimeSlot     string `json:"timeSlot,omitempty"`
	GroupSize    int    `json:"groupSize,omitempty"`
}

type Output struct {
	Advisory models.BookingAdvisory `json:"advisory"`
}
