// internal/planner/llm/generator.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure sentinels. Adapters wrap them with %w so callers can match with errors.Is.
var (
	ErrTimeout       = errors.New("llm timeout")
	ErrTransport     = errors.New("llm transport error")
	ErrEmptyResponse = errors.New("llm empty response")

	// ErrDisabled is a transport failure that is never worth retrying.
	ErrDisabled = fmt.Errorf("%w: provider disabled", ErrTransport)
)

type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Generator produces a document for a prompt within ctx's deadline.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Classify maps an adapter error onto one of the sentinels. Errors that already wrap a
// sentinel are returned as is; anything else is classified by context state and message.
func Classify(ctx context.Context, provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport) || errors.Is(err, ErrEmptyResponse) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, provider, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, provider, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrTransport, provider, err)
	}
}

// checkText rejects blank generations.
func checkText(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s returned no text", ErrEmptyResponse, provider)
	}
	return text, nil
}

// Disabled never calls out; every request fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, req Request) (string, error) {
	return "", ErrDisabled
}
