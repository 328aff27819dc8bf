package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[string]*template.Template
)

// DefaultLang is used when a requested language has no template.
const DefaultLang = "en"

// QuizData holds template data for the question generation prompt.
type QuizData struct {
	Topic      string
	Difficulty string
}

// Load parses the embedded prompt templates.
// It uses sync.Once to ensure templates are loaded only once.
func Load() error {
	loadOnce.Do(func() {
		templates = make(map[string]*template.Template)

		entries, err := templateFS.ReadDir("templates")
		if err != nil {
			loadErr = fmt.Errorf("read prompt templates: %w", err)
			return
		}
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, "quiz_") || !strings.HasSuffix(name, ".txt") {
				continue
			}
			content, err := templateFS.ReadFile("templates/" + name)
			if err != nil {
				loadErr = errors.New("failed to read prompt file " + name + ": " + err.Error())
				return
			}
			tmpl, err := template.New(name).Parse(string(content))
			if err != nil {
				loadErr = errors.New("failed to parse prompt template " + name + ": " + err.Error())
				return
			}
			lang := strings.TrimSuffix(strings.TrimPrefix(name, "quiz_"), ".txt")
			templates[lang] = tmpl
		}
		if _, ok := templates[DefaultLang]; !ok {
			loadErr = errors.New("missing default prompt template quiz_" + DefaultLang + ".txt")
		}
	})
	return loadErr
}

// BuildQuizPrompt renders the question generation prompt for lang, falling
// back to DefaultLang when lang has no template.
func BuildQuizPrompt(lang string, data QuizData) (string, error) {
	if err := Load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[lang]
	if !ok {
		tmpl = templates[DefaultLang]
	}
	if data.Difficulty == "" {
		data.Difficulty = "medium"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
