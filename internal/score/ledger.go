// Package score records answers and ranks users by correct answers.
package score

import (
	"context"
	"log/slog"
	"time"

	"github.com/pavelanni/slackquiz/internal/model"
)

// Store is an additive score ledger backend.
type Store interface {
	// Increment adds d to the user's counters atomically, creating the
	// record if needed, and returns the updated record.
	Increment(ctx context.Context, userID string, d model.ScoreDelta) (model.ScoreRecord, error)
	ScanAll(ctx context.Context) ([]model.ScoreRecord, error)
}

// Ledger records graded answers.
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// NewLedgerWithClock is NewLedger with a custom time source.
func NewLedgerWithClock(store Store, now func() time.Time) *Ledger {
	return &Ledger{store: store, now: now}
}

// RecordAnswer counts one answered question for userID, and one correct
// answer if correct is true. It returns nil if the store failed; grading
// does not depend on the result.
func (l *Ledger) RecordAnswer(ctx context.Context, userID string, correct bool) *model.ScoreRecord {
	d := model.ScoreDelta{Total: 1, At: l.now()}
	if correct {
		d.Correct = 1
	}
	r, err := l.store.Increment(ctx, userID, d)
	if err != nil {
		slog.Error("record answer", "user", userID, "error", err)
		return nil
	}
	return &r
}
