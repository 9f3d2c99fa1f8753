package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/speechgrader/internal/audio"
	"github.com/nikhilbhutani/speechgrader/internal/feedback"
)

// Transcriber turns a payload into trimmed text.
type Transcriber interface {
	Transcribe(ctx context.Context, p *audio.Payload) (string, error)
}

// FeedbackGenerator produces grammar and sentiment feedback for a transcript.
type FeedbackGenerator interface {
	Generate(ctx context.Context, transcript string) (*feedback.Result, error)
}

// ErrorLog is the request's handle on the session error log.
type ErrorLog interface {
	Append(ctx context.Context, entry string)
}

// Report is everything the presentation layer renders for one submission.
type Report struct {
	Source            audio.Source `json:"source"`
	RecordingComplete bool         `json:"recording_complete"`
	AudioContentType  string       `json:"audio_content_type"`
	Transcript        string       `json:"transcript"`
	Transcribed       bool         `json:"transcribed"`
	FeedbackEnabled   bool         `json:"feedback_enabled"`
	HasGrammar        bool         `json:"has_grammar"`
	Grammar           string       `json:"grammar,omitempty"`
	Score             int          `json:"score"`
	ScoreFound        bool         `json:"score_found"`
	Fraction          float64      `json:"fraction"`
	Corrected         *string      `json:"corrected,omitempty"`
	HasSentiment      bool         `json:"has_sentiment"`
	Sentiment         string       `json:"sentiment,omitempty"`
	Warnings          []string     `json:"warnings,omitempty"`
	Errors            []string     `json:"errors,omitempty"`
}

// Pipeline runs one submission from audio to feedback.
type Pipeline struct {
	transcriber Transcriber
	generator   FeedbackGenerator
}

// New builds a pipeline. A nil transcriber or generator means the feature
// is not configured.
func New(transcriber Transcriber, generator FeedbackGenerator) *Pipeline {
	return &Pipeline{transcriber: transcriber, generator: generator}
}

func (p *Pipeline) TranscriptionEnabled() bool { return p.transcriber != nil }
func (p *Pipeline) FeedbackEnabled() bool      { return p.generator != nil }

// Run processes payload, which must be non-nil. Steps run strictly in
// order and the first failure ends the request; failures are appended to
// log and copied into the report.
func (p *Pipeline) Run(ctx context.Context, payload *audio.Payload, log ErrorLog) *Report {
	r := &Report{
		Source:            payload.Source,
		RecordingComplete: payload.Source == audio.SourceRecording,
		AudioContentType:  payload.ContentType(),
		FeedbackEnabled:   p.FeedbackEnabled(),
	}

	if p.transcriber == nil {
		r.Warnings = append(r.Warnings, WarnTranscriptionDisabled)
		return r
	}

	transcript, err := p.transcriber.Transcribe(ctx, payload)
	if err != nil {
		p.fail(ctx, r, log, &StageError{Stage: StageAudio, Err: err})
		return r
	}
	transcript = strings.TrimSpace(transcript)
	r.Transcribed = true
	r.Transcript = transcript

	if transcript == "" {
		r.Warnings = append(r.Warnings, WarnEmptyTranscript)
		return r
	}

	if p.generator == nil {
		return r
	}

	res, err := p.generator.Generate(ctx, transcript)
	if res != nil {
		if res.HasGrammar() {
			r.HasGrammar = true
			r.Grammar = res.Grammar
			r.Score = res.Analysis.Score
			r.ScoreFound = res.Analysis.ScoreFound
			r.Fraction = res.Analysis.Fraction()
			r.Corrected = res.Analysis.Corrected
			if !res.Analysis.ScoreFound {
				slog.Warn("grammar score not found in model output, using default", "default", feedback.DefaultScore)
			}
		}
		if res.HasSentiment() {
			r.HasSentiment = true
			r.Sentiment = res.Sentiment
		}
	}
	if err != nil {
		for _, e := range splitErrors(err) {
			p.fail(ctx, r, log, &StageError{Stage: StageFeedback, Err: e})
		}
	}

	return r
}

func (p *Pipeline) fail(ctx context.Context, r *Report, log ErrorLog, err *StageError) {
	msg := err.Error()
	slog.Error("pipeline stage failed", "stage", err.Stage, "error", err.Err)
	r.Errors = append(r.Errors, msg)
	if log != nil {
		log.Append(ctx, msg)
	}
}
