// internal/workers/itinerary/generate-trip-preview/config.go
package generatetrippreview

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 45 * time.Second,
	}
}
