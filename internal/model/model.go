package model

import "time"

// Label identifies one of the four answer options ("A" through "D").
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the option labels in display order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD}

// Option is a single answer choice.
type Option struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Display returns the button text, for example "B. 15 minutes". Its first
// character is always the option's label.
func (o Option) Display() string {
	return string(o.Label) + ". " + o.Text
}

// Question is a multiple-choice trivia question.
type Question struct {
	Text        string   `json:"text"`
	Options     []Option `json:"options"`
	Correct     Label    `json:"correct"`
	Explanation string   `json:"explanation"`
}

// HasOption reports whether l is the label of one of the question's options.
func (q Question) HasOption(l Label) bool {
	for _, o := range q.Options {
		if o.Label == l {
			return true
		}
	}
	return false
}

// AnswerToken is the grading state embedded in each answer button. The JSON
// field names are part of the wire format carried through the chat platform.
type AnswerToken struct {
	Answer      Label  `json:"answer"`
	Correct     Label  `json:"correct"`
	Explanation string `json:"explanation"`
	UserID      string `json:"user_id"`
	MAC         string `json:"mac,omitempty"`
}

// IsCorrect reports whether the token's own answer matches the correct label.
func (t AnswerToken) IsCorrect() bool {
	return t.Answer == t.Correct
}

// ScoreRecord holds the cumulative counters for one user.
type ScoreRecord struct {
	UserID      string    `json:"user_id"`
	Correct     int64     `json:"score"`
	Total       int64     `json:"total_questions"`
	LastUpdated time.Time `json:"last_updated"`
}

// Accuracy returns the correct-answer percentage, or 0 when nothing was answered.
func (r ScoreRecord) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

// ScoreDelta is an additive update applied atomically by a ledger store.
type ScoreDelta struct {
	Correct int64
	Total   int64
	At      time.Time
}

// LeaderboardEntry is a ranked, derived view of a ScoreRecord.
type LeaderboardEntry struct {
	ScoreRecord
	Rank int `json:"rank"`
}

// Config holds runtime parameters assembled from flags, environment and config file.
type Config struct {
	Lang            string        // message and prompt language (en, ja)
	SigningSecretID string        // identifier passed to the secret store
	TokenSign       bool          // add an HMAC to answer tokens
	TokenKeyID      string        // secret id for the token key; empty reuses the signing secret
	StrictQuestions bool          // reject generated questions that are not exactly A-D with a valid answer
	LeaderboardSize int           // entries shown by the leaderboard command
	SecretCacheTTL  time.Duration // how long fetched secrets are reused
}
