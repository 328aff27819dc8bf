// Package token encodes the grading state carried by each answer button.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/pavelanni/slackquiz/internal/model"
)

// MaxValueLen is Slack's limit for a button value.
const MaxValueLen = 2000

var (
	// ErrMalformed is returned when a token value cannot be decoded.
	ErrMalformed = errors.New("malformed answer token")
	// ErrTampered is returned when a signed token's MAC does not match.
	ErrTampered = errors.New("answer token integrity check failed")
)

// Codec encodes and decodes answer tokens. With a non-empty key every token
// carries an HMAC-SHA256 over its fields and Decode rejects tokens without a
// valid one.
type Codec struct {
	key []byte
}

// NewCodec creates a Codec. A nil or empty key disables signing.
func NewCodec(key []byte) *Codec {
	return &Codec{key: key}
}

// Signed reports whether the codec adds and checks MACs.
func (c *Codec) Signed() bool {
	return len(c.key) > 0
}

// Encode serializes t, truncating the explanation if needed so the value
// fits within MaxValueLen.
func (c *Codec) Encode(t model.AnswerToken) (string, error) {
	for {
		t.MAC = ""
		if c.Signed() {
			t.MAC = c.mac(t)
		}
		data, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("marshal answer token: %w", err)
		}
		if len(data) <= MaxValueLen {
			return string(data), nil
		}
		if t.Explanation == "" {
			return "", fmt.Errorf("answer token is %d bytes even without explanation", len(data))
		}
		t.Explanation = shorten(t.Explanation, len(data)-MaxValueLen)
	}
}

// Decode parses a button value produced by Encode.
func (c *Codec) Decode(value string) (model.AnswerToken, error) {
	var t model.AnswerToken
	if err := json.Unmarshal([]byte(value), &t); err != nil {
		return model.AnswerToken{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if t.Answer == "" || t.Correct == "" {
		return model.AnswerToken{}, fmt.Errorf("%w: missing answer or correct label", ErrMalformed)
	}
	if c.Signed() {
		got, err := hex.DecodeString(t.MAC)
		if err != nil || !hmac.Equal(got, c.macBytes(t)) {
			return model.AnswerToken{}, ErrTampered
		}
	}
	return t, nil
}

func (c *Codec) mac(t model.AnswerToken) string {
	return hex.EncodeToString(c.macBytes(t))
}

func (c *Codec) macBytes(t model.AnswerToken) []byte {
	m := hmac.New(sha256.New, c.key)
	for _, field := range []string{string(t.Answer), string(t.Correct), t.Explanation, t.UserID} {
		// Length prefixes keep field boundaries unambiguous.
		fmt.Fprintf(m, "%d:%s;", len(field), field)
	}
	return m.Sum(nil)
}

// shorten drops at least n bytes (plus room for an ellipsis) from the end of
// s without splitting a rune. JSON escaping can make the encoded size larger
// than the raw size, so Encode loops until the value fits.
func shorten(s string, n int) string {
	const ellipsis = "…"
	cut := len(s) - n - len(ellipsis)
	if cut <= 0 {
		return ""
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
