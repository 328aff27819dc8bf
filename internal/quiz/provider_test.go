package quiz

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pavelanni/slackquiz/internal/model"
)

type fakeGenerator struct {
	content string
	err     error
	prompt  string
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.content, f.err
}

func TestGenerateParsesGeneratorOutput(t *testing.T) {
	gen := &fakeGenerator{content: wellFormed}
	q := NewProvider(gen, "en", "", true).Generate(context.Background())

	if q.Text != "Which service stores objects?" || q.Correct != model.LabelB {
		t.Fatalf("unexpected question %+v", q)
	}
	if !strings.Contains(gen.prompt, DefaultTopic) {
		t.Errorf("prompt should mention the default topic, got:\n%s", gen.prompt)
	}
}

func TestGenerateFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		gen    Generator
		strict bool
	}{
		{"generator error", &fakeGenerator{err: errors.New("throttled")}, true},
		{"unparseable", &fakeGenerator{content: "no idea"}, true},
		{"missing explanation", &fakeGenerator{content: "Question: q\nA. a\nB. b\nC. c\nD. d\nAnswer: A"}, false},
		{"strict rejects bad answer label", &fakeGenerator{content: strings.Replace(wellFormed, "Answer: B", "Answer: E", 1)}, true},
		{"strict rejects two options", &fakeGenerator{content: "Question: q\nA. a\nB. b\nAnswer: A\nExplanation: e"}, true},
		{"nil generator", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewProvider(tt.gen, "en", "", tt.strict).Generate(context.Background())
			if !reflect.DeepEqual(q, Fallback("en")) {
				t.Fatalf("expected fallback, got %+v", q)
			}
		})
	}
}

func TestGenerateLenientKeepsInconsistentQuestion(t *testing.T) {
	content := "Question: q\nA. a\nB. b\nAnswer: E\nExplanation: e"
	q := NewProvider(&fakeGenerator{content: content}, "en", "", false).Generate(context.Background())
	if q.Text != "q" || len(q.Options) != 2 || q.Correct != "E" {
		t.Fatalf("lenient mode should keep the parsed question, got %+v", q)
	}
}

func TestFallbackIsCompleteAndIndependent(t *testing.T) {
	for _, lang := range []string{"en", "ja"} {
		q := Fallback(lang)
		if err := Validate(q); err != nil {
			t.Errorf("Fallback(%q) invalid: %v", lang, err)
		}
		q.Options[0].Text = "mutated"
		if Fallback(lang).Options[0].Text == "mutated" {
			t.Errorf("Fallback(%q) shares option storage between calls", lang)
		}
	}
	if Fallback("ja").Text == Fallback("en").Text {
		t.Error("expected a localized Japanese fallback")
	}
}
