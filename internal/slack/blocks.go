package slack

import (
	"fmt"

	"github.com/pavelanni/slackquiz/internal/model"
	slackapi "github.com/slack-go/slack"
)

// Slack rejects button labels longer than this many characters.
const maxButtonText = 75

// TokenEncoder serializes an answer token into a button value.
type TokenEncoder interface {
	Encode(t model.AnswerToken) (string, error)
}

// QuizBlocks builds the question message: a section with the title and
// question text, and one button per option. Each button carries its own
// token so a click can be graded without server-side state.
func QuizBlocks(title string, q model.Question, userID string, enc TokenEncoder) ([]slackapi.Block, error) {
	buttons := make([]slackapi.BlockElement, 0, len(q.Options))
	for _, opt := range q.Options {
		display := opt.Display()
		value, err := enc.Encode(model.AnswerToken{
			Answer:      model.Label(display[:1]),
			Correct:     q.Correct,
			Explanation: q.Explanation,
			UserID:      userID,
		})
		if err != nil {
			return nil, fmt.Errorf("encode option %s: %w", opt.Label, err)
		}
		text := slackapi.NewTextBlockObject(slackapi.PlainTextType, truncateRunes(display, maxButtonText), false, false)
		buttons = append(buttons, slackapi.NewButtonBlockElement(ActionID(string(opt.Label)), value, text))
	}

	question := slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("%s\n\n*%s*", title, q.Text), false, false)
	return []slackapi.Block{
		slackapi.NewSectionBlock(question, nil, nil),
		slackapi.NewActionBlock("", buttons...),
	}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
