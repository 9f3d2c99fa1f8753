package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/speechgrader/internal/api"
	"github.com/nikhilbhutani/speechgrader/internal/api/handlers"
	"github.com/nikhilbhutani/speechgrader/internal/config"
	"github.com/nikhilbhutani/speechgrader/internal/feedback"
	"github.com/nikhilbhutani/speechgrader/internal/llm"
	"github.com/nikhilbhutani/speechgrader/internal/pipeline"
	"github.com/nikhilbhutani/speechgrader/internal/prompt"
	"github.com/nikhilbhutani/speechgrader/internal/session"
	"github.com/nikhilbhutani/speechgrader/internal/stt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Speech-to-text (optional)
	var transcriber pipeline.Transcriber
	sttProvider, err := stt.NewProvider(cfg.STT)
	if err != nil {
		slog.Error("failed to create stt provider", "error", err)
		os.Exit(1)
	}
	if sttProvider != nil {
		transcriber = stt.NewClient(sttProvider, "")
	}

	// Feedback (optional)
	gw, err := llm.NewGateway(ctx, cfg.LLM)
	if err != nil {
		slog.Error("failed to create llm gateway", "error", err)
		os.Exit(1)
	}
	if c, ok := gw.(io.Closer); ok {
		defer c.Close()
	}
	feedbackModel := cfg.LLM.Model
	if feedbackModel == "" {
		feedbackModel = llm.DefaultModel(cfg.LLM.Provider)
	}
	var generator pipeline.FeedbackGenerator
	if cfg.FeedbackEnabled() {
		prompts, err := prompt.Load()
		if err != nil {
			slog.Error("failed to load prompts", "error", err)
			os.Exit(1)
		}
		generator = feedback.NewGenerator(gw, prompts, feedback.Options{
			Model:           feedbackModel,
			IsolateFailures: cfg.LLM.IsolateFailures,
		})
	}

	// Session store
	var (
		store session.Store
		rdb   *redis.Client
	)
	switch cfg.Session.Store {
	case "redis":
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, session errors will not be recorded until it recovers", "error", err)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Session.TTL)
	default:
		mem := session.NewMemoryStore(cfg.Session.TTL)
		go mem.Run(ctx, time.Minute)
		store = mem
	}

	sessions, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Server.SecureCookie)
	if err != nil {
		slog.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}

	status := handlers.Status{
		TranscriptionEnabled: transcriber != nil,
		FeedbackEnabled:      generator != nil,
		STTBackend:           cfg.STT.Backend,
		FeedbackProvider:     cfg.LLM.Provider,
		FeedbackModel:        feedbackModel,
		Models:               gw.ListModels(),
		Warnings:             cfg.Warnings(),
	}

	// Setup router
	router, err := api.NewRouter(cfg, pipeline.New(transcriber, generator), store, sessions, rdb, status)
	if err != nil {
		slog.Error("failed to create router", "error", err)
		os.Exit(1)
	}

	srv := newHTTPServer(cfg.Addr(), router.Setup())

	go func() {
		slog.Info("starting server",
			"addr", cfg.Addr(),
			"stt_backend", cfg.STT.Backend,
			"feedback_provider", cfg.LLM.Provider,
			"session_store", cfg.Session.Store,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// newHTTPServer bounds only header reads and idle connections; request
// bodies may be large uploads and a report waits on remote AI calls.
func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
