package quiz

import (
	"context"
	"log/slog"

	"github.com/pavelanni/slackquiz/internal/llm/prompts"
	"github.com/pavelanni/slackquiz/internal/model"
)

// DefaultTopic is the subject the generator is asked about.
const DefaultTopic = "AWS cloud services"

// Generator produces free-form text for a prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider obtains questions from a Generator and never fails: any error
// results in the fallback question for the configured language.
type Provider struct {
	gen    Generator
	lang   string
	topic  string
	strict bool
}

// NewProvider creates a Provider. A nil generator always yields the fallback.
func NewProvider(gen Generator, lang, topic string, strict bool) *Provider {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Provider{gen: gen, lang: lang, topic: topic, strict: strict}
}

// Generate returns a complete question.
func (p *Provider) Generate(ctx context.Context) model.Question {
	if p.gen == nil {
		return Fallback(p.lang)
	}

	prompt, err := prompts.BuildQuizPrompt(p.lang, prompts.QuizData{Topic: p.topic})
	if err != nil {
		slog.Error("build quiz prompt", "error", err)
		return Fallback(p.lang)
	}

	content, err := p.gen.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("question generation failed, using fallback", "error", err)
		return Fallback(p.lang)
	}

	q, err := Parse(content)
	if err != nil {
		slog.Warn("unparseable question, using fallback", "error", err)
		return Fallback(p.lang)
	}
	if p.strict {
		if err := Validate(q); err != nil {
			slog.Warn("inconsistent question, using fallback", "error", err)
			return Fallback(p.lang)
		}
	}
	return q
}
