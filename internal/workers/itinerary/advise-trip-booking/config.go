// internal/workers/itinerary/advise-trip-booking/config.go
package advisetripbooking

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
