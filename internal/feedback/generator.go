package feedback

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/nikhilbhutani/speechgrader/internal/llm"
	"github.com/nikhilbhutani/speechgrader/internal/prompt"
)

// Options tune a Generator.
type Options struct {
	Model string
	// IsolateFailures gives the grammar and sentiment calls separate failure
	// boundaries. When false a grammar failure also skips the sentiment call.
	IsolateFailures bool
	Parser          GrammarParser
}

// Generator asks the language model for grammar and sentiment feedback.
type Generator struct {
	gateway llm.Gateway
	prompts *prompt.Set
	parser  GrammarParser
	model   string
	isolate bool
}

func NewGenerator(gw llm.Gateway, prompts *prompt.Set, opts Options) *Generator {
	parser := opts.Parser
	if parser == nil {
		parser = RegexParser{}
	}
	return &Generator{
		gateway: gw,
		prompts: prompts,
		parser:  parser,
		model:   opts.Model,
		isolate: opts.IsolateFailures,
	}
}

// Result carries whatever feedback was produced before the first failure
// (or, with isolated failures, every section that succeeded).
type Result struct {
	Grammar   string           `json:"grammar,omitempty"`
	Sentiment string           `json:"sentiment,omitempty"`
	Analysis  *GrammarAnalysis `json:"analysis,omitempty"`
}

func (r *Result) HasGrammar() bool   { return r.Analysis != nil }
func (r *Result) HasSentiment() bool { return r.Sentiment != "" }

// Generate issues the grammar prompt and then the sentiment prompt, one at a
// time, each as a fresh single-message conversation. With isolated failures
// the returned error is a *multierror.Error holding every failed call;
// Result is never nil.
func (g *Generator) Generate(ctx context.Context, transcript string) (*Result, error) {
	res := &Result{}
	var result *multierror.Error

	grammar, err := g.ask(ctx, g.prompts.Grammar, transcript)
	if err != nil {
		err = fmt.Errorf("grammar analysis: %w", err)
		if !g.isolate {
			return res, err
		}
		result = multierror.Append(result, err)
	} else {
		res.Grammar = grammar
		analysis := g.parser.ParseGrammar(grammar)
		res.Analysis = &analysis
	}

	sentiment, err := g.ask(ctx, g.prompts.Sentiment, transcript)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("sentiment analysis: %w", err))
	} else {
		res.Sentiment = sentiment
	}

	return res, result.ErrorOrNil()
}

func (g *Generator) ask(ctx context.Context, build func(string) (string, error), transcript string) (string, error) {
	text, err := build(transcript)
	if err != nil {
		return "", err
	}
	resp, err := g.gateway.Chat(ctx, llm.UserPrompt(g.model, text))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
