// internal/workers/itinerary/compute-trip-budget/config.go
package computetripbudget

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
