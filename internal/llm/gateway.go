package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/nikhilbhutani/speechgrader/internal/config"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewGateway registers every provider that has a credential. Calls are made
// once; there is no retry and no fallback provider.
func NewGateway(ctx context.Context, cfg config.LLMConfig) (Gateway, error) {
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.Provider,
	}

	if cfg.GeminiKey != "" {
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey)
		if err != nil {
			return nil, err
		}
		g.providers["gemini"] = p
	}
	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	return g, nil
}

// NewGatewayWithProviders builds a gateway from ready providers keyed by name.
func NewGatewayWithProviders(defaultProvider string, providers ...Provider) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}
	if req.Model == "" {
		req.Model = DefaultModel(providerName)
	}

	resp, err := p.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Info("llm call",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

func (g *gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, p := range g.providers {
		for _, m := range p.Models() {
			models = append(models, ModelInfo{Provider: p.Name(), Model: m})
		}
	}
	return models
}

// Close releases providers that hold connections.
func (g *gateway) Close() error {
	var result *multierror.Error
	for _, p := range g.providers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("close %s: %w", p.Name(), err))
			}
		}
	}
	return result.ErrorOrNil()
}
