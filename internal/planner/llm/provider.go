// internal/planner/llm/provider.go
package llm

import (
	"fmt"

	"itinerary-workers/internal/common/config"
)

// New builds the generator selected by cfg.Provider.
func New(cfg config.GenAIConfig) (Generator, error) {
	switch cfg.Provider {
	case "", "genai":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("genai provider requires apis.genai.base_url")
		}
		return NewGenAIGenerator(cfg.BaseURL, cfg.APIKey), nil
	case "openai":
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
