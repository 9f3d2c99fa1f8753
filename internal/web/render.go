package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/nikhilbhutani/speechgrader/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// DownloadFilename is the name the corrected sentence is offered under.
const DownloadFilename = "corrected_transcript.txt"

// PageData feeds templates/index.html.
type PageData struct {
	ConfigWarnings []string
	Report         *pipeline.Report
	AudioURL       template.URL
	ErrorLog       []string
	RequestError   string
	MaxUploadMB    int64
}

// Renderer renders the single-page UI. Model output is treated as markdown
// with raw HTML escaped; the transcript is always plain text.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		md: goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps())),
	}
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"markdown": r.Markdown,
		"percent":  func(f float64) string { return fmt.Sprintf("%.0f", f*100) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) Render(w io.Writer, data PageData) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", data)
}

// Markdown converts model output to HTML. On a conversion failure the text
// is shown escaped instead.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// AudioDataURL inlines the submitted clip so the page can play it back
// without keeping it on the server.
func AudioDataURL(contentType string, data []byte) template.URL {
	return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
}
