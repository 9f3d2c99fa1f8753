package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Empty(t, cfg.LLM.Model)
	assert.Equal(t, "assemblyai", cfg.STT.Backend)
	assert.Equal(t, "whisper-1", cfg.STT.OpenAIModel)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.LLM.IsolateFailures)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FEEDBACK_PROVIDER", " OpenAI ")
	t.Setenv("FEEDBACK_MODEL", "gpt-4o-mini")
	t.Setenv("FEEDBACK_ISOLATE_FAILURES", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("STT_BACKEND", "openai")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.True(t, cfg.LLM.IsolateFailures)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAIKey)
	assert.Equal(t, "sk-test", cfg.STT.OpenAIKey)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.FeedbackEnabled())
	assert.True(t, cfg.TranscriptionEnabled())
	assert.Empty(t, cfg.Warnings())
}

func TestFromEnvInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidateAccumulatesErrors(t *testing.T) {
	t.Setenv("FEEDBACK_PROVIDER", "palm")
	t.Setenv("STT_BACKEND", "vosk")
	t.Setenv("SESSION_STORE", "disk")

	cfg, err := FromEnv()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEEDBACK_PROVIDER")
	assert.Contains(t, err.Error(), "STT_BACKEND")
	assert.Contains(t, err.Error(), "SESSION_STORE")
}

func TestWarningsForMissingKeys(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.FeedbackEnabled())
	assert.False(t, cfg.TranscriptionEnabled())

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "GEMINI_API_KEY")
	assert.Contains(t, warnings[1], "ASSEMBLYAI_API_KEY")
}

func TestLocalBackendsUseURLAsKey(t *testing.T) {
	t.Setenv("FEEDBACK_PROVIDER", "ollama")
	t.Setenv("OLLAMA_URL", "http://localhost:11434")
	t.Setenv("STT_BACKEND", "local")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.FeedbackEnabled())
	assert.False(t, cfg.TranscriptionEnabled())
	require.Len(t, cfg.Warnings(), 1)
	assert.Contains(t, cfg.Warnings()[0], "STT_LOCAL_BASE_URL")
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "DEBUG"}
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.LogLevel = "bogus"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
