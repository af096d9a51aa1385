// internal/planner/llm/genai.go
package llm

import (
	"context"
	"fmt"
	"strings"

	commonhttp "itinerary-workers/internal/common/http"
)

const genaiProvider = "genai"

// GenAIGenerator calls the internal GenAI gateway (POST {base}/api/ai/generate).
type GenAIGenerator struct {
	baseURL string
	client  *commonhttp.Client
}

func NewGenAIGenerator(baseURL, apiKey string) *GenAIGenerator {
	client := commonhttp.NewClient(0)
	if apiKey != "" {
		client = client.WithHeader("Authorization", "Bearer "+apiKey)
	}
	return &GenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type genaiRequest struct {
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context,omitempty"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type genaiResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	body := genaiRequest{
		Prompt:      req.UserPrompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.SystemPrompt != "" {
		body.Context = map[string]interface{}{"system": req.SystemPrompt}
	}

	var resp genaiResponse
	if err := g.client.PostJSON(ctx, fmt.Sprintf("%s/api/ai/generate", g.baseURL), body, &resp); err != nil {
		return "", Classify(ctx, genaiProvider, err)
	}
	return checkText(genaiProvider, resp.Text)
}
