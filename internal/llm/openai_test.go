package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescribe/voicescribe/internal/config"
)

func TestOpenAIChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Equal(t, "gemma3:4b", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 1e-6)
		assert.Equal(t, 200, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-123",
			"model": "gemma3:4b",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello, world."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 25, "completion_tokens": 5, "total_tokens": 30}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL+"/v1")

	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Model: "gemma3:4b",
		Messages: []Message{
			{Role: "system", Content: "fix the text"},
			{Role: "user", Content: "hello world"},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello, world.", resp.Content)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 25, resp.InputTokens)
	assert.Equal(t, 5, resp.OutputTokens)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))
}

func TestOpenAIZeroTemperatureOnTheWire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		// An explicit 0 must survive go-openai's omitempty marshaling:
		// the field is present and indistinguishable from 0 for sampling.
		temp, ok := raw["temperature"].(float64)
		require.True(t, ok, "temperature missing from request body")
		assert.Less(t, temp, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","model":"m","choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL+"/v1")

	_, err := p.ChatCompletion(context.Background(), ChatRequest{
		Model:       "m",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: 0.0,
	})
	require.NoError(t, err)
}

func TestOpenAIChatCompletionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL+"/v1")

	_, err := p.ChatCompletion(context.Background(), ChatRequest{Model: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai chat")
}

func TestGatewayRoutesToDefaultProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","model":"m","choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{}}`)
	}))
	defer srv.Close()

	g := NewGateway(config.LLMConfig{
		Provider:  "openai",
		OpenAIKey: "test-key",
		BaseURL:   srv.URL + "/v1",
	})

	resp, err := g.Chat(context.Background(), ChatRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestGatewayUnknownProvider(t *testing.T) {
	g := NewGateway(config.LLMConfig{Provider: "bedrock"})

	_, err := g.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGatewayAnthropicRequiresKey(t *testing.T) {
	g := NewGateway(config.LLMConfig{Provider: "anthropic"})

	_, err := g.Provider("anthropic")
	require.Error(t, err)
}
