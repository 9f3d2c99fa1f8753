package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// LocalSTTConfig holds configuration for the local whisper.cpp STT backend.
type LocalSTTConfig struct {
	BaseURL string // e.g. "http://localhost:8178"
}

// LocalSTT talks to a whisper.cpp HTTP server.
// Start the server with: ./server -m models/ggml-base.en.bin --port 8178
type LocalSTT struct {
	baseURL    string
	httpClient *http.Client
}

func NewLocalSTT(cfg LocalSTTConfig) *LocalSTT {
	return &LocalSTT{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{},
	}
}

func (l *LocalSTT) Name() string { return "local-whisper" }

// Transcribe sends the audio file to the server's /inference endpoint as a multipart upload.
func (l *LocalSTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = mw.WriteField("response_format", "json")
	if req.Language != "" {
		_ = mw.WriteField("language", req.Language)
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/inference", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &TranscriptionResponse{Text: apiResp.Text}, nil
}
