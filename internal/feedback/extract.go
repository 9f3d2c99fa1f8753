package feedback

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultScore is reported when the grammar answer carries no parsable
// score line. It is a fallback, not a measurement; ScoreFound tells the two
// apart.
const DefaultScore = 100

var (
	scorePattern     = regexp.MustCompile(`(?i)Grammar Score:\s*(\d{1,3})\s*/\s*100`)
	correctedPattern = regexp.MustCompile(`Corrected Version:\s*(.+)`)
)

// GrammarAnalysis is the structured part of a grammar answer.
type GrammarAnalysis struct {
	Score      int     `json:"score"`
	ScoreFound bool    `json:"score_found"`
	Corrected  *string `json:"corrected,omitempty"`
}

// Fraction is the score on a 0..1 scale for progress bars.
func (a GrammarAnalysis) Fraction() float64 { return float64(a.Score) / 100 }

func (a GrammarAnalysis) HasCorrected() bool { return a.Corrected != nil }

// GrammarParser turns free-form grammar feedback into a GrammarAnalysis.
type GrammarParser interface {
	ParseGrammar(text string) GrammarAnalysis
}

// RegexParser matches the labeled lines requested by the grammar prompt.
type RegexParser struct{}

func (RegexParser) ParseGrammar(text string) GrammarAnalysis {
	return ParseGrammar(text)
}

// ParseGrammar extracts the score and the corrected sentence. Neither field
// is required: a missing score yields DefaultScore and a missing or blank
// corrected line yields a nil Corrected.
func ParseGrammar(text string) GrammarAnalysis {
	a := GrammarAnalysis{Score: DefaultScore}

	if m := scorePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			a.Score = clamp(n, 0, 100)
			a.ScoreFound = true
		}
	}

	if m := correctedPattern.FindStringSubmatch(text); m != nil {
		if corrected := strings.TrimSpace(m[1]); corrected != "" {
			a.Corrected = &corrected
		}
	}

	return a
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
