// internal/workers/itinerary/generate-trip-plan/config.go
package generatetripplan

import "time"

type Config struct {
	// Timeout bounds the whole job. It must exceed the full-plan generation deadline.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 120 * time.Second,
	}
}
