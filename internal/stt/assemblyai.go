package stt

import (
	"context"
	"errors"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

// AssemblyAISTT transcribes audio with AssemblyAI. The SDK uploads the
// file and polls until the transcript is completed or errored.
type AssemblyAISTT struct {
	client *aai.Client
}

func NewAssemblyAISTT(apiKey string) *AssemblyAISTT {
	return &AssemblyAISTT{client: aai.NewClient(apiKey)}
}

func (a *AssemblyAISTT) Name() string { return "assemblyai" }

func (a *AssemblyAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var params *aai.TranscriptOptionalParams
	if req.Language != "" {
		params = &aai.TranscriptOptionalParams{LanguageCode: aai.TranscriptLanguageCode(req.Language)}
	}

	transcript, err := a.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, fmt.Errorf("assemblyai transcription: %w", errors.New(aai.ToString(transcript.Error)))
	}

	return &TranscriptionResponse{Text: aai.ToString(transcript.Text)}, nil
}
