package quiz

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pavelanni/slackquiz/internal/model"
)

const wellFormed = `Question: Which service stores objects?
A. Amazon EC2
B. Amazon S3
C. Amazon RDS
D. AWS Lambda
Answer: B
Explanation: S3 is object storage.`

func TestParseWellFormed(t *testing.T) {
	q, err := Parse(wellFormed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := model.Question{
		Text: "Which service stores objects?",
		Options: []model.Option{
			{Label: model.LabelA, Text: "Amazon EC2"},
			{Label: model.LabelB, Text: "Amazon S3"},
			{Label: model.LabelC, Text: "Amazon RDS"},
			{Label: model.LabelD, Text: "AWS Lambda"},
		},
		Correct:     model.LabelB,
		Explanation: "S3 is object storage.",
	}
	if !reflect.DeepEqual(q, want) {
		t.Fatalf("Parse() = %+v\nwant %+v", q, want)
	}
	if err := Validate(q); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseJapaneseMarkers(t *testing.T) {
	content := "ここに問題です\n問題：S3 の主な用途は？\nA. 計算\nB. オブジェクトストレージ\nC. DNS\nD. キュー\n正解：B\n解説：S3 はオブジェクトストレージです。"
	q, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Text != "S3 の主な用途は？" {
		t.Errorf("Text = %q", q.Text)
	}
	if q.Correct != model.LabelB {
		t.Errorf("Correct = %q", q.Correct)
	}
	if q.Explanation != "S3 はオブジェクトストレージです。" {
		t.Errorf("Explanation = %q", q.Explanation)
	}
	if len(q.Options) != 4 || q.Options[1].Display() != "B. オブジェクトストレージ" {
		t.Errorf("Options = %+v", q.Options)
	}
}

func TestParseLastWins(t *testing.T) {
	content := wellFormed + "\nQuestion: Replaced question?\nB. Amazon S3 Glacier\nAnswer: C"
	q, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Text != "Replaced question?" {
		t.Errorf("Text = %q, want last question line", q.Text)
	}
	if q.Options[1].Text != "Amazon S3 Glacier" {
		t.Errorf("option B = %q, want last B line", q.Options[1].Text)
	}
	if q.Correct != model.LabelC {
		t.Errorf("Correct = %q, want C", q.Correct)
	}
}

func TestParseIgnoresNoiseAndWhitespace(t *testing.T) {
	content := "Sure! Here is your question.\n\n   Question:   Which is serverless?  \r\n A. EC2\nB. Lambda\nC. EBS\nD. VPC\n\nAnswer: b\nExplanation: Lambda runs code without servers.\nHope this helps!"
	q, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Text != "Which is serverless?" {
		t.Errorf("Text = %q", q.Text)
	}
	if q.Correct != model.LabelB {
		t.Errorf("Correct = %q, want B", q.Correct)
	}
}

func TestParseIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no question", "A. x\nB. y\nAnswer: A\nExplanation: e"},
		{"no options", "Question: q\nAnswer: A\nExplanation: e"},
		{"no answer", "Question: q\nA. x\nExplanation: e"},
		{"no explanation", "Question: q\nA. x\nAnswer: A"},
		{"free prose", "I cannot generate a question right now."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.content)
			if !errors.Is(err, ErrIncomplete) {
				t.Fatalf("expected ErrIncomplete, got %v", err)
			}
			if !reflect.DeepEqual(q, model.Question{}) {
				t.Errorf("expected zero question on error, got %+v", q)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want model.Label
	}{
		{"B", model.LabelB},
		{"d", model.LabelD},
		{"C. Amazon RDS", model.LabelC},
		{"A)", model.LabelA},
		{"Amazon S3", "Amazon S3"},
		{"E", "E"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.in); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base, err := Parse(wellFormed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(q *model.Question)
	}{
		{"three options", func(q *model.Question) { q.Options = q.Options[:3] }},
		{"correct label outside options", func(q *model.Question) { q.Correct = "E" }},
		{"correct label is option text", func(q *model.Question) { q.Correct = "Amazon S3" }},
		{"empty option text", func(q *model.Question) { q.Options[2].Text = "" }},
		{"out of order", func(q *model.Question) { q.Options[0], q.Options[1] = q.Options[1], q.Options[0] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			q.Options = append([]model.Option(nil), base.Options...)
			tt.mutate(&q)
			if err := Validate(q); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
