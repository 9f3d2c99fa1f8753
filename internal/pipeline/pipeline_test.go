package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/speechgrader/internal/audio"
	"github.com/nikhilbhutani/speechgrader/internal/feedback"
	"github.com/nikhilbhutani/speechgrader/internal/llm"
	"github.com/nikhilbhutani/speechgrader/internal/prompt"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, *audio.Payload) (string, error) {
	f.calls++
	return f.text, f.err
}

type scriptedProvider struct {
	responses map[string]string
	errs      map[string]error
	calls     int
}

func (s *scriptedProvider) Name() string     { return "gemini" }
func (s *scriptedProvider) Models() []string { return nil }

func (s *scriptedProvider) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	kind := "sentiment"
	if strings.Contains(req.Messages[0].Content, "grammatical correctness") {
		kind = "grammar"
	}
	if err := s.errs[kind]; err != nil {
		return nil, err
	}
	return &llm.ChatResponse{Provider: "gemini", Model: req.Model, Content: s.responses[kind]}, nil
}

type memLog struct{ entries []string }

func (m *memLog) Append(_ context.Context, entry string) { m.entries = append(m.entries, entry) }

func newGenerator(t *testing.T, p *scriptedProvider, isolate bool) *feedback.Generator {
	t.Helper()
	prompts, err := prompt.Load()
	require.NoError(t, err)
	return feedback.NewGenerator(llm.NewGatewayWithProviders("gemini", p), prompts, feedback.Options{
		Model:           "gemini-2.0-flash-lite",
		IsolateFailures: isolate,
	})
}

func recording() *audio.Payload {
	return &audio.Payload{Data: []byte("RIFF"), Encoding: audio.WAV, Source: audio.SourceRecording}
}

func TestRunGrammarScenario(t *testing.T) {
	provider := &scriptedProvider{responses: map[string]string{
		"grammar": "Grammatical Issues: \"go\" should be \"goes\".\nCorrected Version: She goes to school every day.\nGrammar Score: 62/100\nExplanation: Subject-verb agreement.",
		"sentiment": "Sentiment: Neutral\nExplanation: A plain statement of routine.",
	}}
	p := New(&fakeTranscriber{text: "She go to school every day."}, newGenerator(t, provider, false))
	log := &memLog{}

	r := p.Run(context.Background(), recording(), log)

	assert.True(t, r.RecordingComplete)
	assert.Equal(t, "audio/wav", r.AudioContentType)
	assert.Equal(t, "She go to school every day.", r.Transcript)
	require.True(t, r.HasGrammar)
	assert.Equal(t, 62, r.Score)
	assert.True(t, r.ScoreFound)
	assert.InDelta(t, 0.62, r.Fraction, 1e-9)
	require.NotNil(t, r.Corrected)
	assert.Equal(t, "She goes to school every day.", *r.Corrected)
	assert.True(t, r.HasSentiment)
	assert.Empty(t, r.Errors)
	assert.Empty(t, log.entries)
	assert.Equal(t, 2, provider.calls)
}

func TestRunSentimentIsOpaque(t *testing.T) {
	sentiment := "Sentiment: Positive\nExplanation: The speaker expresses happiness."
	provider := &scriptedProvider{responses: map[string]string{"grammar": "Grammar Score: 100/100", "sentiment": sentiment}}
	p := New(&fakeTranscriber{text: "I am very happy today!"}, newGenerator(t, provider, false))

	r := p.Run(context.Background(), recording(), &memLog{})
	assert.Equal(t, sentiment, r.Sentiment)
	assert.Nil(t, r.Corrected)
}

func TestRunDefaultScoreWhenMissing(t *testing.T) {
	provider := &scriptedProvider{responses: map[string]string{"grammar": "Looks fine to me.", "sentiment": "Sentiment: Neutral"}}
	p := New(&fakeTranscriber{text: "Hello there."}, newGenerator(t, provider, false))

	r := p.Run(context.Background(), recording(), &memLog{})
	assert.Equal(t, 100, r.Score)
	assert.False(t, r.ScoreFound)
	assert.InDelta(t, 1.0, r.Fraction, 1e-9)
}

func TestRunEmptyTranscriptSkipsFeedback(t *testing.T) {
	provider := &scriptedProvider{}
	log := &memLog{}
	p := New(&fakeTranscriber{text: ""}, newGenerator(t, provider, false))

	r := p.Run(context.Background(), recording(), log)

	assert.True(t, r.Transcribed)
	assert.Equal(t, []string{WarnEmptyTranscript}, r.Warnings)
	assert.Zero(t, provider.calls)
	assert.Empty(t, log.entries)
	assert.Empty(t, r.Errors)
	assert.False(t, r.HasGrammar)
}

func TestRunTranscriptionFailureHalts(t *testing.T) {
	provider := &scriptedProvider{}
	log := &memLog{}
	p := New(&fakeTranscriber{err: errors.New("401 unauthorized")}, newGenerator(t, provider, false))

	r := p.Run(context.Background(), recording(), log)

	require.Equal(t, []string{"Error processing audio: 401 unauthorized"}, r.Errors)
	assert.Equal(t, r.Errors, log.entries)
	assert.False(t, r.Transcribed)
	assert.Zero(t, provider.calls)
}

func TestRunFeedbackDisabled(t *testing.T) {
	log := &memLog{}
	p := New(&fakeTranscriber{text: "She go to school every day."}, nil)

	r := p.Run(context.Background(), recording(), log)

	assert.Equal(t, "She go to school every day.", r.Transcript)
	assert.False(t, r.FeedbackEnabled)
	assert.False(t, r.HasGrammar)
	assert.False(t, r.HasSentiment)
	assert.Empty(t, r.Errors)
	assert.Empty(t, log.entries)
}

func TestRunTranscriptionDisabled(t *testing.T) {
	log := &memLog{}
	p := New(nil, nil)

	r := p.Run(context.Background(), recording(), log)
	assert.Equal(t, []string{WarnTranscriptionDisabled}, r.Warnings)
	assert.Empty(t, log.entries)
	assert.False(t, p.TranscriptionEnabled())
}

func TestRunCoupledFeedbackFailure(t *testing.T) {
	provider := &scriptedProvider{errs: map[string]error{"grammar": errors.New("quota exceeded")}}
	log := &memLog{}
	p := New(&fakeTranscriber{text: "hello"}, newGenerator(t, provider, false))

	r := p.Run(context.Background(), recording(), log)

	require.Len(t, r.Errors, 1)
	assert.Equal(t, "Error generating feedback: grammar analysis: quota exceeded", r.Errors[0])
	assert.Equal(t, r.Errors, log.entries)
	assert.Equal(t, 1, provider.calls)
	assert.False(t, r.HasSentiment)
}

func TestRunIsolatedFeedbackFailures(t *testing.T) {
	provider := &scriptedProvider{
		responses: map[string]string{"sentiment": "Sentiment: Positive"},
		errs:      map[string]error{"grammar": errors.New("quota exceeded")},
	}
	log := &memLog{}
	p := New(&fakeTranscriber{text: "hello"}, newGenerator(t, provider, true))

	r := p.Run(context.Background(), recording(), log)

	assert.Equal(t, 2, provider.calls)
	assert.Len(t, log.entries, 1)
	assert.False(t, r.HasGrammar)
	assert.True(t, r.HasSentiment)
}

func TestRunBothIsolatedFailuresLoggedSeparately(t *testing.T) {
	provider := &scriptedProvider{errs: map[string]error{
		"grammar":   errors.New("a"),
		"sentiment": errors.New("b"),
	}}
	log := &memLog{}
	p := New(&fakeTranscriber{text: "hello"}, newGenerator(t, provider, true))

	r := p.Run(context.Background(), recording(), log)
	assert.Equal(t, []string{
		"Error generating feedback: grammar analysis: a",
		"Error generating feedback: sentiment analysis: b",
	}, log.entries)
	assert.Equal(t, log.entries, r.Errors)
}

func TestStageErrorUnwraps(t *testing.T) {
	base := errors.New("boom")
	err := error(&StageError{Stage: StageAudio, Err: base})
	assert.ErrorIs(t, err, base)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageAudio, se.Stage)
}

func TestRunUntrimmedBlankTranscriptIsEmpty(t *testing.T) {
	provider := &scriptedProvider{}
	p := New(&fakeTranscriber{text: " \n\t "}, newGenerator(t, provider, false))

	r := p.Run(context.Background(), recording(), &memLog{})

	assert.Equal(t, []string{WarnEmptyTranscript}, r.Warnings)
	assert.Empty(t, r.Transcript)
	assert.Zero(t, provider.calls)
}

func TestReportJSONKeepsZeroScore(t *testing.T) {
	provider := &scriptedProvider{responses: map[string]string{"grammar": "Grammar Score: 0/100", "sentiment": "Sentiment: Negative"}}
	p := New(&fakeTranscriber{text: "me no speak good"}, newGenerator(t, provider, false))

	data, err := json.Marshal(p.Run(context.Background(), recording(), &memLog{}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, true, got["has_grammar"])
	assert.Equal(t, float64(0), got["score"])
	assert.Equal(t, float64(0), got["fraction"])
	assert.Equal(t, true, got["score_found"])
}

func TestSplitErrorsFlattensMultierror(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")
	assert.Equal(t, []error{a, b}, splitErrors(multierror.Append(nil, a, b)))
	assert.Equal(t, []error{a}, splitErrors(a))
}
