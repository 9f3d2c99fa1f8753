package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Models() []string {
	return []string{openai.GPT4oMini, openai.GPT4o, openai.GPT4Turbo}
}

func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	oReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		oReq.Messages = append(oReq.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat: %w", ErrEmptyCompletion)
	}
	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, fmt.Errorf("openai chat: %w (finish reason %s)", ErrEmptyCompletion, choice.FinishReason)
	}

	out := newResponse("openai", req.Model, choice.Message.Content, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, start)
	out.ID = resp.ID
	return out, nil
}
