package prompt

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SentenceVar is the placeholder every feedback template embeds the transcript in.
const SentenceVar = "sentence"

//go:embed prompts.yaml
var defaultPrompts []byte

// Template is one named prompt.
type Template struct {
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// Set holds the two feedback prompts.
type Set struct {
	GrammarTemplate   Template `yaml:"grammar"`
	SentimentTemplate Template `yaml:"sentiment"`
}

// Load parses the embedded prompt set.
func Load() (*Set, error) {
	return Parse(defaultPrompts)
}

// Parse reads a prompt set from YAML and checks that both templates embed
// the sentence placeholder.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	for name, t := range map[string]Template{"grammar": s.GrammarTemplate, "sentiment": s.SentimentTemplate} {
		if !hasVar(t.Template, SentenceVar) {
			return nil, fmt.Errorf("prompt %q must reference {{%s}}", name, SentenceVar)
		}
	}
	return &s, nil
}

func (s *Set) Grammar(sentence string) (string, error) {
	return Render(s.GrammarTemplate.Template, map[string]string{SentenceVar: sentence})
}

func (s *Set) Sentiment(sentence string) (string, error) {
	return Render(s.SentimentTemplate.Template, map[string]string{SentenceVar: sentence})
}

func hasVar(template, name string) bool {
	for _, v := range ExtractVariables(template) {
		if v == name {
			return true
		}
	}
	return false
}
