package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Models() []string {
	return []string{"gemini-2.0-flash-lite", "gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}
}

func (p *GeminiProvider) Close() error { return p.client.Close() }

// ChatCompletion sends the conversation turns as one content; system
// messages become the model's system instruction.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	model := p.client.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	system, turns := splitSystem(req.Messages)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	parts := make([]genai.Part, 0, len(turns))
	for _, m := range turns {
		parts = append(parts, genai.Text(m.Content))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil {
			return nil, fmt.Errorf("gemini generate: %w (prompt blocked: %v)", ErrEmptyCompletion, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("gemini generate: %w", ErrEmptyCompletion)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, fmt.Errorf("gemini generate: %w (finish reason %v)", ErrEmptyCompletion, resp.Candidates[0].FinishReason)
	}

	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return newResponse("gemini", req.Model, sb.String(), inputTokens, outputTokens, start), nil
}
