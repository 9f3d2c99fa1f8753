package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Session  SessionConfig
	LLM      LLMConfig
	STT      STTConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Host         string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         int      `env:"SERVER_PORT" envDefault:"8080"`
	MaxUploadMB  int64    `env:"MAX_UPLOAD_MB" envDefault:"25"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:","`
	SecureCookie bool     `env:"SECURE_COOKIE" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type SessionConfig struct {
	Store  string        `env:"SESSION_STORE" envDefault:"memory"` // "memory" or "redis"
	Secret string        `env:"SESSION_SECRET"`                    // random per process when empty
	TTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

type LLMConfig struct {
	Provider        string `env:"FEEDBACK_PROVIDER" envDefault:"gemini"`
	Model           string `env:"FEEDBACK_MODEL"` // provider default when empty
	IsolateFailures bool   `env:"FEEDBACK_ISOLATE_FAILURES" envDefault:"false"`
	GeminiKey       string `env:"GEMINI_API_KEY"`
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	AnthropicKey    string `env:"ANTHROPIC_API_KEY"`
	OllamaURL       string `env:"OLLAMA_URL"`
}

type STTConfig struct {
	Backend       string `env:"STT_BACKEND" envDefault:"assemblyai"` // "assemblyai", "openai" or "local"
	AssemblyAIKey string `env:"ASSEMBLYAI_API_KEY"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"STT_OPENAI_BASE_URL"`
	OpenAIModel   string `env:"STT_OPENAI_MODEL" envDefault:"whisper-1"`
	LocalBaseURL  string `env:"STT_LOCAL_BASE_URL"`
}

var (
	llmProviders = []string{"gemini", "openai", "anthropic", "ollama"}
	sttBackends  = []string{"assemblyai", "openai", "local"}
	stores       = []string{"memory", "redis"}
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.STT.Backend = strings.ToLower(strings.TrimSpace(cfg.STT.Backend))
	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var result *multierror.Error
	if !oneOf(c.LLM.Provider, llmProviders) {
		result = multierror.Append(result, fmt.Errorf("FEEDBACK_PROVIDER %q must be one of %s", c.LLM.Provider, strings.Join(llmProviders, ", ")))
	}
	if !oneOf(c.STT.Backend, sttBackends) {
		result = multierror.Append(result, fmt.Errorf("STT_BACKEND %q must be one of %s", c.STT.Backend, strings.Join(sttBackends, ", ")))
	}
	if !oneOf(c.Session.Store, stores) {
		result = multierror.Append(result, fmt.Errorf("SESSION_STORE %q must be one of %s", c.Session.Store, strings.Join(stores, ", ")))
	}
	if c.Server.MaxUploadMB <= 0 {
		result = multierror.Append(result, fmt.Errorf("MAX_UPLOAD_MB must be positive"))
	}
	if c.Session.TTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("SESSION_TTL must be positive"))
	}
	return result.ErrorOrNil()
}

// FeedbackKey returns the credential of the selected feedback provider.
// For ollama the base URL plays that role.
func (c *LLMConfig) FeedbackKey() string {
	switch c.Provider {
	case "gemini":
		return c.GeminiKey
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	case "ollama":
		return c.OllamaURL
	}
	return ""
}

func (c *LLMConfig) keyName() string {
	switch c.Provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "ollama":
		return "OLLAMA_URL"
	}
	return "FEEDBACK_PROVIDER"
}

// TranscriptionKey returns the credential of the selected STT backend.
// For the local whisper.cpp server the base URL plays that role.
func (c *STTConfig) TranscriptionKey() string {
	switch c.Backend {
	case "assemblyai":
		return c.AssemblyAIKey
	case "openai":
		return c.OpenAIKey
	case "local":
		return c.LocalBaseURL
	}
	return ""
}

func (c *STTConfig) keyName() string {
	switch c.Backend {
	case "assemblyai":
		return "ASSEMBLYAI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "local":
		return "STT_LOCAL_BASE_URL"
	}
	return "STT_BACKEND"
}

func (c *Config) FeedbackEnabled() bool { return c.LLM.FeedbackKey() != "" }

func (c *Config) TranscriptionEnabled() bool { return c.STT.TranscriptionKey() != "" }

// Warnings lists missing credentials. Each one permanently disables the
// dependent feature for the lifetime of the process.
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.FeedbackEnabled() {
		warnings = append(warnings, fmt.Sprintf("%s not found. Grammar and sentiment feedback is disabled.", c.LLM.keyName()))
	}
	if !c.TranscriptionEnabled() {
		warnings = append(warnings, fmt.Sprintf("%s not found. Transcription is disabled.", c.STT.keyName()))
	}
	return warnings
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
