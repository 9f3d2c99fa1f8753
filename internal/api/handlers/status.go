package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/speechgrader/internal/llm"
)

// Status describes what the running process can do. It is fixed at startup.
type Status struct {
	TranscriptionEnabled bool            `json:"transcription_enabled"`
	FeedbackEnabled      bool            `json:"feedback_enabled"`
	STTBackend           string          `json:"stt_backend"`
	FeedbackProvider     string          `json:"feedback_provider"`
	FeedbackModel        string          `json:"feedback_model"`
	Models               []llm.ModelInfo `json:"models"`
	Warnings             []string        `json:"warnings"`
}

type StatusHandler struct {
	status Status
}

func NewStatusHandler(s Status) *StatusHandler {
	if s.Models == nil {
		s.Models = []llm.ModelInfo{}
	}
	if s.Warnings == nil {
		s.Warnings = []string{}
	}
	return &StatusHandler{status: s}
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status)
}
