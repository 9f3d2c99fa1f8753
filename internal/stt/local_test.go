package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSTTTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inference", r.URL.Path)
		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "clip.wav", header.Filename)
		assert.Equal(t, "RIFF", string(data))
		assert.Equal(t, "json", r.FormValue("response_format"))
		w.Write([]byte(`{"text":" I am very happy today! "}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	resp, err := NewLocalSTT(LocalSTTConfig{BaseURL: srv.URL}).Transcribe(context.Background(), TranscriptionRequest{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, " I am very happy today! ", resp.Text)
}

func TestLocalSTTStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	_, err := NewLocalSTT(LocalSTTConfig{BaseURL: srv.URL}).Transcribe(context.Background(), TranscriptionRequest{FilePath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestLocalSTTBoundOnlyByContext(t *testing.T) {
	l := NewLocalSTT(LocalSTTConfig{BaseURL: "http://localhost:8178"})
	assert.Zero(t, l.httpClient.Timeout)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocalSTT(LocalSTTConfig{BaseURL: srv.URL}).Transcribe(ctx, TranscriptionRequest{FilePath: path})
	assert.ErrorIs(t, err, context.Canceled)
}
