package memory

import (
	"context"
	"sync"

	"github.com/pavelanni/slackquiz/internal/model"
)

// Store is an in-memory score ledger. Records are returned in the order users
// were first seen.
type Store struct {
	mu      sync.RWMutex
	records map[string]*model.ScoreRecord
	order   []string
}

func New() *Store {
	return &Store{
		records: make(map[string]*model.ScoreRecord),
	}
}

func (s *Store) Increment(_ context.Context, userID string, d model.ScoreDelta) (model.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[userID]
	if !ok {
		r = &model.ScoreRecord{UserID: userID}
		s.records[userID] = r
		s.order = append(s.order, userID)
	}
	r.Correct += d.Correct
	r.Total += d.Total
	r.LastUpdated = d.At
	return *r, nil
}

func (s *Store) ScanAll(_ context.Context) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ScoreRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.records[id])
	}
	return out, nil
}
