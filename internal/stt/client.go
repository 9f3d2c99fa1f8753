package stt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/speechgrader/internal/audio"
)

// Client writes a payload to a temporary file owned by the current request,
// hands the path to the provider and removes the file before returning.
type Client struct {
	provider Provider
	tempDir  string
}

// NewClient wraps provider. An empty tempDir means os.TempDir().
func NewClient(provider Provider, tempDir string) *Client {
	return &Client{provider: provider, tempDir: tempDir}
}

func (c *Client) Name() string { return c.provider.Name() }

// Transcribe returns the trimmed transcript. An empty string with a nil
// error means the service heard nothing.
func (c *Client) Transcribe(ctx context.Context, p *audio.Payload) (string, error) {
	path, err := c.writeTemp(p)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temp audio file", "path", path, "error", err)
		}
	}()

	start := time.Now()
	resp, err := c.provider.Transcribe(ctx, TranscriptionRequest{FilePath: path})
	if err != nil {
		return "", err
	}

	slog.Info("audio transcribed",
		"provider", c.provider.Name(),
		"source", p.Source,
		"encoding", p.Encoding,
		"bytes", len(p.Data),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return strings.TrimSpace(resp.Text), nil
}

func (c *Client) writeTemp(p *audio.Payload) (string, error) {
	f, err := os.CreateTemp(c.tempDir, "audio-"+uuid.NewString()+"-*"+p.Ext())
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(p.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp audio file: %w", err)
	}
	return path, nil
}
