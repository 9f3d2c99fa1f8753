package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/speechgrader/internal/api/handlers"
	"github.com/nikhilbhutani/speechgrader/internal/api/middleware"
	"github.com/nikhilbhutani/speechgrader/internal/config"
	"github.com/nikhilbhutani/speechgrader/internal/session"
	"github.com/nikhilbhutani/speechgrader/internal/web"
)

type Router struct {
	mux      *chi.Mux
	cfg      *config.Config
	assessor handlers.Assessor
	store    session.Store
	sessions *session.Manager
	redis    *redis.Client
	status   handlers.Status
	page     *web.Renderer
}

// NewRouter wires the HTTP surface. rdb is nil unless sessions live in redis.
func NewRouter(cfg *config.Config, a handlers.Assessor, store session.Store, sessions *session.Manager, rdb *redis.Client, status handlers.Status) (*Router, error) {
	page, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load page templates: %w", err)
	}
	return &Router{
		mux:      chi.NewRouter(),
		cfg:      cfg,
		assessor: a,
		store:    store,
		sessions: sessions,
		redis:    rdb,
		status:   status,
		page:     page,
	}, nil
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no session)
	checks := map[string]handlers.Check{}
	if rt.redis != nil {
		checks["redis"] = handlers.RedisCheck(rt.redis)
	}
	health := handlers.NewHealthHandler(checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	assessH := handlers.NewAssessmentHandler(rt.assessor, rt.store, rt.page, rt.cfg.Warnings(), rt.cfg.Server.MaxUploadMB)
	sessionH := handlers.NewSessionHandler(rt.store, rt.sessions)
	statusH := handlers.NewStatusHandler(rt.status)

	// Page
	r.Group(func(r chi.Router) {
		r.Use(rt.sessions.Middleware)
		r.Get("/", assessH.Page)
		r.Post("/assess", assessH.Assess)
		r.Post("/download", assessH.Download)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))
		r.Get("/status", statusH.Status)

		r.Group(func(r chi.Router) {
			r.Use(rt.sessions.Middleware)
			r.Post("/assessments", assessH.Create)
			r.Get("/session/errors", sessionH.Errors)
			r.Delete("/session", sessionH.End)
		})
	})

	return r
}
