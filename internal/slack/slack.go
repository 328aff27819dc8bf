// Package slack adapts slack-go to the quiz webhook: interaction payload
// decoding, answer button action ids and Block Kit responses.
package slack

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"
)

// Response types.
const (
	ResponseEphemeral = "ephemeral"
	ResponseInChannel = "in_channel"
)

// ActionPrefix prefixes the action_id of every answer button.
const ActionPrefix = "quiz_answer_"

var errNoBlockActions = errors.New("interaction payload has no block actions")

// ParseInteraction decodes the JSON "payload" form field and returns the
// callback together with its first block action.
func ParseInteraction(raw string) (slackapi.InteractionCallback, *slackapi.BlockAction, error) {
	var cb slackapi.InteractionCallback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		return slackapi.InteractionCallback{}, nil, fmt.Errorf("decode interaction payload: %w", err)
	}
	if len(cb.ActionCallback.BlockActions) == 0 {
		return slackapi.InteractionCallback{}, nil, errNoBlockActions
	}
	return cb, cb.ActionCallback.BlockActions[0], nil
}

// Ephemeral returns a message visible only to the invoking user.
func Ephemeral(text string, blocks ...slackapi.Block) slackapi.Msg {
	msg := slackapi.Msg{ResponseType: ResponseEphemeral, Text: text}
	if len(blocks) > 0 {
		msg.Blocks = slackapi.Blocks{BlockSet: blocks}
	}
	return msg
}

// Replacement returns an ephemeral message that replaces the one carrying
// the clicked button.
func Replacement(text string) slackapi.Msg {
	msg := Ephemeral(text)
	msg.ReplaceOriginal = true
	return msg
}

// ActionID returns the action_id of the answer button for label.
func ActionID(label string) string {
	return ActionPrefix + strings.ToLower(label)
}

// LabelFromActionID recovers the option label from an answer button's
// action_id. ok is false for actions that are not answer buttons.
func LabelFromActionID(actionID string) (label string, ok bool) {
	suffix, found := strings.CutPrefix(actionID, ActionPrefix)
	if !found || suffix == "" {
		return "", false
	}
	return strings.ToUpper(suffix), true
}
