package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/speechgrader/internal/session"
)

type SessionHandler struct {
	store    session.Store
	sessions *session.Manager
}

func NewSessionHandler(store session.Store, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{store: store, sessions: sessions}
}

// Errors lists the session's error log, oldest first.
func (h *SessionHandler) Errors(w http.ResponseWriter, r *http.Request) {
	id := session.IDFromContext(r.Context())
	entries, err := session.NewLog(id, h.store).Entries(r.Context())
	if err != nil {
		slog.Error("failed to read session errors", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "session store unavailable")
		return
	}
	if entries == nil {
		entries = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "errors": entries})
}

// End discards the error log and starts a new session.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id := session.IDFromContext(r.Context())
	if err := session.NewLog(id, h.store).End(r.Context()); err != nil {
		slog.Error("failed to end session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "session store unavailable")
		return
	}

	newID, err := h.sessions.Renew(w)
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	slog.Info("session ended", "session_id", id, "new_session_id", newID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended", "session_id": newID})
}
