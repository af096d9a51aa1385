// internal/planner/llm/generator_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinerary-workers/internal/common/config"
)

func newGenAIServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenAIGenerator_Success(t *testing.T) {
	srv := newGenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body genaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "plan paris", body.Prompt)
		assert.Equal(t, 1200, body.MaxTokens)
		assert.Equal(t, "be helpful", body.Context["system"])

		_ = json.NewEncoder(w).Encode(genaiResponse{Text: "<h2>Trip Overview</h2>", Confidence: 0.9})
	})

	gen := NewGenAIGenerator(srv.URL+"/", "secret")
	text, err := gen.Generate(context.Background(), Request{
		SystemPrompt: "be helpful",
		UserPrompt:   "plan paris",
		MaxTokens:    1200,
		Temperature:  0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "<h2>Trip Overview</h2>", text)
}

func TestGenAIGenerator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
		timeout time.Duration
		want    error
	}{
		{
			name: "bad gateway is transport",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down", http.StatusBadGateway)
			},
			timeout: time.Second,
			want:    ErrTransport,
		},
		{
			name: "blank text is empty response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(genaiResponse{Text: "   \n"})
			},
			timeout: time.Second,
			want:    ErrEmptyResponse,
		},
		{
			name: "slow upstream is timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
			want:    ErrTimeout,
		},
		{
			name: "malformed body is transport",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			timeout: time.Second,
			want:    ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGenAIServer(t, tt.handler)
			ctx, cancel := context.WithTimeout(context.Background(), tt.timeout)
			defer cancel()

			_, err := NewGenAIGenerator(srv.URL, "").Generate(ctx, Request{UserPrompt: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestClassify(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want error
	}{
		{"nil", context.Background(), nil, nil},
		{"already classified", context.Background(), ErrEmptyResponse, ErrEmptyResponse},
		{"deadline exceeded", context.Background(), context.DeadlineExceeded, ErrTimeout},
		{"expired context", expired, errors.New("read tcp: reset"), ErrTimeout},
		{"timeout message", context.Background(), errors.New("i/o timeout"), ErrTimeout},
		{"connection refused", context.Background(), errors.New("dial tcp: connection refused"), ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.ctx, "test", tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrDisabled))
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestNew(t *testing.T) {
	gen, err := New(config.GenAIConfig{Provider: "none"})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, gen)

	gen, err = New(config.GenAIConfig{Provider: "genai", BaseURL: "http://localhost:8090"})
	require.NoError(t, err)
	assert.IsType(t, &GenAIGenerator{}, gen)

	gen, err = New(config.GenAIConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, gen)

	_, err = New(config.GenAIConfig{Provider: "genai"})
	assert.Error(t, err)

	_, err = New(config.GenAIConfig{Provider: "openai"})
	assert.Error(t, err)

	_, err = New(config.GenAIConfig{Provider: "mystery"})
	assert.Error(t, err)
}
