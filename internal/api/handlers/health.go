package handlers

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// RedisCheck pings the session store's redis.
func RedisCheck(rdb *redis.Client) Check {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz runs every check. Memory sessions and remote AI services are not
// checked; the latter fail per request and are reported on the page.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]string, len(h.checks))
	status, overall := http.StatusOK, "ok"
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			results[name] = "unhealthy: " + err.Error()
			status, overall = http.StatusServiceUnavailable, "unhealthy"
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, map[string]interface{}{"status": overall, "checks": results})
}
