package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/slackquiz/internal/model"
)

var (
	questionMarkers    = []string{"Question:", "問題：", "問題:"}
	answerMarkers      = []string{"Answer:", "正解：", "正解:"}
	explanationMarkers = []string{"Explanation:", "解説：", "解説:"}
)

// ErrIncomplete is returned by Parse when a required field is missing.
var ErrIncomplete = errors.New("generated question is incomplete")

// Parse reads generator output line by line. Recognized lines are the
// question, answer and explanation markers and option lines "A." through
// "D."; everything else is ignored. A later line with the same marker
// replaces an earlier one.
//
// Parse only requires that question text, correct label, explanation and at
// least one option are present. Use Validate for the stricter shape check.
func Parse(content string) (model.Question, error) {
	var (
		q       model.Question
		options = make(map[model.Label]string)
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if v, ok := cutAny(line, questionMarkers); ok {
			q.Text = v
			continue
		}
		if label, text, ok := cutOption(line); ok {
			options[label] = text
			continue
		}
		if v, ok := cutAny(line, answerMarkers); ok {
			q.Correct = normalizeLabel(v)
			continue
		}
		if v, ok := cutAny(line, explanationMarkers); ok {
			q.Explanation = v
		}
	}

	for _, l := range model.Labels {
		if text, ok := options[l]; ok {
			q.Options = append(q.Options, model.Option{Label: l, Text: text})
		}
	}

	var missing []string
	if q.Text == "" {
		missing = append(missing, "question")
	}
	if len(q.Options) == 0 {
		missing = append(missing, "options")
	}
	if q.Correct == "" {
		missing = append(missing, "answer")
	}
	if q.Explanation == "" {
		missing = append(missing, "explanation")
	}
	if len(missing) > 0 {
		return model.Question{}, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return q, nil
}

// Validate checks that q has exactly the options A-D in order, each with
// text, and that the correct label names one of them.
func Validate(q model.Question) error {
	if len(q.Options) != len(model.Labels) {
		return fmt.Errorf("expected %d options, got %d", len(model.Labels), len(q.Options))
	}
	for i, o := range q.Options {
		if o.Label != model.Labels[i] {
			return fmt.Errorf("option %d has label %q, want %q", i, o.Label, model.Labels[i])
		}
		if o.Text == "" {
			return fmt.Errorf("option %s is empty", o.Label)
		}
	}
	if !q.HasOption(q.Correct) {
		return fmt.Errorf("correct label %q is not one of the options", q.Correct)
	}
	return nil
}

func cutAny(line string, markers []string) (string, bool) {
	for _, m := range markers {
		if v, ok := strings.CutPrefix(line, m); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func cutOption(line string) (model.Label, string, bool) {
	for _, l := range model.Labels {
		if v, ok := strings.CutPrefix(line, string(l)+"."); ok {
			return l, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

// normalizeLabel reduces answers like "B", "b" or "B. 15 minutes" to "B".
// Anything else is kept verbatim so Validate can reject it.
func normalizeLabel(v string) model.Label {
	if v == "" {
		return ""
	}
	first := strings.ToUpper(v[:1])
	if first >= "A" && first <= "D" {
		if len(v) == 1 || !isASCIILetter(v[1]) {
			return model.Label(first)
		}
	}
	return model.Label(v)
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
