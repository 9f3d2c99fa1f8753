package llm

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers without any text,
// for example because the prompt or the answer was blocked.
var ErrEmptyCompletion = errors.New("model returned no text")

// Provider abstracts a generative-language provider (Gemini, OpenAI, Anthropic, Ollama).
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
	Models() []string
}

// Gateway routes chat calls to a configured provider.
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Provider(name string) (Provider, error)
	ListModels() []ModelInfo
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest is the input for chat completions. An empty Model means the
// provider's default.
type ChatRequest struct {
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is the output from chat completions.
type ChatResponse struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

var defaultModels = map[string]string{
	"gemini":    "gemini-2.0-flash-lite",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-latest",
	"ollama":    "llama3",
}

// DefaultModel is the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// UserPrompt builds a single-message request, the shape used for every
// stateless prompt.
func UserPrompt(model, prompt string) ChatRequest {
	return ChatRequest{
		Model:    model,
		Messages: []Message{{Role: "user", Content: prompt}},
	}
}

// splitSystem separates system messages, which some APIs take out of band,
// from the conversation turns.
func splitSystem(msgs []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}

func newResponse(provider, model, content string, inputTokens, outputTokens int, start time.Time) *ChatResponse {
	return &ChatResponse{
		Provider:     provider,
		Model:        model,
		Content:      content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      CalculateCost(model, inputTokens, outputTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
	}
}
