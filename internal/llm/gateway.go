package llm

import (
	"context"
	"fmt"

	"github.com/voicescribe/voicescribe/internal/config"
)

// Gateway routes chat completions to a named provider. There is no
// retry loop here: the cleanup stage degrades to the raw transcript on
// failure, and its reported latency must reflect a single attempt.
type Gateway struct {
	providers       map[string]Provider
	defaultProvider string
}

func NewGateway(cfg config.LLMConfig) *Gateway {
	g := &Gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.Provider,
	}

	g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.BaseURL)
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}

	return g
}

func (g *Gateway) Provider(name string) (Provider, error) {
	if name == "" {
		name = g.defaultProvider
	}
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *Gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p, err := g.Provider(g.defaultProvider)
	if err != nil {
		return nil, err
	}
	return p.ChatCompletion(ctx, req)
}
