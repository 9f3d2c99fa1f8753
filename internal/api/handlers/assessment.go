package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/speechgrader/internal/audio"
	"github.com/nikhilbhutani/speechgrader/internal/pipeline"
	"github.com/nikhilbhutani/speechgrader/internal/session"
	"github.com/nikhilbhutani/speechgrader/internal/web"
)

// multipartMemory is how much of a form is held in memory before spilling
// to disk; the total is capped separately by the upload limit.
const multipartMemory = 8 << 20

// Assessor runs one submission through transcription and feedback.
type Assessor interface {
	Run(ctx context.Context, payload *audio.Payload, log pipeline.ErrorLog) *pipeline.Report
}

type AssessmentHandler struct {
	assessor       Assessor
	store          session.Store
	page           *web.Renderer
	configWarnings []string
	maxUploadMB    int64
}

func NewAssessmentHandler(a Assessor, store session.Store, page *web.Renderer, configWarnings []string, maxUploadMB int64) *AssessmentHandler {
	return &AssessmentHandler{
		assessor:       a,
		store:          store,
		page:           page,
		configWarnings: configWarnings,
		maxUploadMB:    maxUploadMB,
	}
}

// Page renders the empty form together with the session's error log.
func (h *AssessmentHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageData{})
}

// Assess processes a form submission and renders the report.
func (h *AssessmentHandler) Assess(w http.ResponseWriter, r *http.Request) {
	payload, status, err := h.readPayload(w, r)
	if err != nil {
		h.render(w, r, status, web.PageData{RequestError: err.Error()})
		return
	}

	report := h.assessor.Run(r.Context(), payload, h.sessionLog(r))
	h.render(w, r, http.StatusOK, web.PageData{
		Report:   report,
		AudioURL: web.AudioDataURL(payload.ContentType(), payload.Data),
	})
}

// Create is the JSON form of Assess.
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, status, err := h.readPayload(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.assessor.Run(r.Context(), payload, h.sessionLog(r)))
}

// Download returns the corrected sentence as a text attachment.
func (h *AssessmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB<<20)
	text := r.PostFormValue("text")
	if strings.TrimSpace(text) == "" {
		http.Error(w, "nothing to download", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+web.DownloadFilename+`"`)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Warn("failed to write download", "error", err)
	}
}

// readPayload parses the multipart body. Rejected input is reported to the
// caller only; it is not a pipeline failure and is not logged to the session.
func (h *AssessmentHandler) readPayload(w http.ResponseWriter, r *http.Request) (*audio.Payload, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("audio file is too large")
		}
		return nil, http.StatusBadRequest, errors.New("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	payload, err := audio.FromMultipart(r.MultipartForm)
	switch {
	case errors.Is(err, audio.ErrUnsupportedEncoding):
		return nil, http.StatusUnsupportedMediaType, errors.New("unsupported audio format, use wav, mp3 or m4a")
	case err != nil:
		return nil, http.StatusBadRequest, err
	}
	return payload, http.StatusOK, nil
}

func (h *AssessmentHandler) sessionLog(r *http.Request) *session.Log {
	return session.NewLog(session.IDFromContext(r.Context()), h.store)
}

func (h *AssessmentHandler) render(w http.ResponseWriter, r *http.Request, status int, data web.PageData) {
	entries, err := h.sessionLog(r).Entries(r.Context())
	if err != nil {
		slog.Error("failed to read session errors", "error", err)
	}
	data.ErrorLog = entries
	data.ConfigWarnings = h.configWarnings
	data.MaxUploadMB = h.maxUploadMB

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Render(w, data); err != nil {
		slog.Error("failed to render page", "error", err)
	}
}
