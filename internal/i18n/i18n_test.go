package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		lang string
		id   string
		want string
	}{
		{"en", "AnswerCorrect", "✅ *Correct!*"},
		{"ja", "AnswerCorrect", "✅ *正解！*"},
		{"en", "LeaderboardTitle", "🏆 *AWS Quiz Leaderboard*"},
		{"ja", "LeaderboardTitle", "🏆 *AWS クイズランキング*"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.id, func(t *testing.T) {
			ctx := initLang(t, tt.lang)
			if got := T(ctx, tt.id); got != tt.want {
				t.Errorf("T(%s) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	data := map[string]any{"Rank": 2, "UserID": "U42", "Correct": 7, "Accuracy": "70.0%"}

	ctx := initLang(t, "en")
	if got := Td(ctx, "LeaderboardLine", data); got != "2. <@U42> - 7 pts (70.0%)" {
		t.Errorf("Td(LeaderboardLine) = %q", got)
	}

	ctx = initLang(t, "ja")
	if got := Td(ctx, "YourRank", data); got != "📍 あなたの順位：第2位 - 7点 (70.0%)" {
		t.Errorf("Td(YourRank) = %q", got)
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	ctx := initLang(t, "fr")
	if got := T(ctx, "AnswerCorrect"); got != "✅ *Correct!*" {
		t.Errorf("T(AnswerCorrect) = %q, want English fallback", got)
	}
}

func TestInvalidLanguage(t *testing.T) {
	if err := Init("not a tag!"); err == nil {
		t.Fatal("expected error for invalid language tag")
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}
