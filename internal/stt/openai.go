package stt

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISTTConfig holds configuration for the OpenAI STT backend.
type OpenAISTTConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// OpenAISTT transcribes audio using OpenAI's Whisper API.
type OpenAISTT struct {
	client *openai.Client
	model  string
}

func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	return &OpenAISTT{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (o *OpenAISTT) Name() string { return "openai-whisper" }

// Transcribe uploads the file; Whisper infers the format from its extension.
func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: req.FilePath,
		Language: req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	return &TranscriptionResponse{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}
