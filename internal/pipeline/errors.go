package pipeline

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Stage names the part of the pipeline a failure came from.
type Stage string

const (
	StageAudio    Stage = "audio"
	StageFeedback Stage = "feedback"
)

var stagePrefix = map[Stage]string{
	StageAudio:    "Error processing audio",
	StageFeedback: "Error generating feedback",
}

// StageError is a failure caught at a component boundary. Its message is
// what the session error log and the page show.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", stagePrefix[e.Stage], e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Warnings halt a request without touching the error log.
const (
	WarnEmptyTranscript       = "No transcription detected. Please try again."
	WarnTranscriptionDisabled = "Transcription is not configured. Set the speech-to-text API key and restart."
)

// splitErrors flattens a multierror so each failed call gets its own log
// entry.
func splitErrors(err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		return merr.WrappedErrors()
	}
	return []error{err}
}
