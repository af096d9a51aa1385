// internal/planner/llm/openai.go
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const openaiProvider = "openai"

// OpenAIGenerator talks to any OpenAI-compatible chat endpoint through langchaingo.
type OpenAIGenerator struct {
	client llms.Model
}

func NewOpenAIGenerator(apiKey, model, baseURL string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires an api key")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAIGenerator{client: client}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	var messages []llms.MessageContent
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.UserPrompt))

	var callOpts []llms.CallOption
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	callOpts = append(callOpts, llms.WithTemperature(req.Temperature))

	resp, err := g.client.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", Classify(ctx, openaiProvider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", ErrEmptyResponse, openaiProvider)
	}
	return checkText(openaiProvider, resp.Choices[0].Content)
}
