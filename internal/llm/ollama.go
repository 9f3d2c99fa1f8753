package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider talks to a local Ollama server's /api/chat endpoint.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllamaProvider(baseURL string) *OllamaProvider {
	return &OllamaProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Models() []string {
	return []string{"llama3", "mistral", "gemma2"}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error"`
}

func (p *OllamaProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	oReq := ollamaChatRequest{Model: req.Model}
	for _, m := range req.Messages {
		oReq.Messages = append(oReq.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		oReq.Options = map[string]any{}
		if req.Temperature > 0 {
			oReq.Options["temperature"] = req.Temperature
		}
		if req.MaxTokens > 0 {
			oReq.Options["num_predict"] = req.MaxTokens
		}
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, fmt.Errorf("ollama encode: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ollama read: %w", err)
	}
	var oResp ollamaChatResponse
	decodeErr := json.Unmarshal(raw, &oResp)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && oResp.Error != "" {
			msg = oResp.Error
		}
		return nil, fmt.Errorf("ollama chat (status %d): %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("ollama decode: %w", decodeErr)
	}
	if strings.TrimSpace(oResp.Message.Content) == "" {
		return nil, fmt.Errorf("ollama chat: %w (done reason %q)", ErrEmptyCompletion, oResp.DoneReason)
	}

	return newResponse("ollama", req.Model, oResp.Message.Content, oResp.PromptEvalCount, oResp.EvalCount, start), nil
}
