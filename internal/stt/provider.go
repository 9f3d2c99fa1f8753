package stt

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/speechgrader/internal/config"
)

// TranscriptionRequest holds the parameters for audio transcription.
type TranscriptionRequest struct {
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// NewProvider builds the backend selected by cfg.Backend. It returns nil,
// nil when the backend has no credential configured.
func NewProvider(cfg config.STTConfig) (Provider, error) {
	if cfg.TranscriptionKey() == "" {
		return nil, nil
	}
	switch cfg.Backend {
	case "assemblyai":
		return NewAssemblyAISTT(cfg.AssemblyAIKey), nil
	case "openai":
		return NewOpenAISTT(OpenAISTTConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	case "local":
		return NewLocalSTT(LocalSTTConfig{BaseURL: cfg.LocalBaseURL}), nil
	}
	return nil, fmt.Errorf("unknown stt backend %q", cfg.Backend)
}
