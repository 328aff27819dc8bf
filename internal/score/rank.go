package score

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pavelanni/slackquiz/internal/model"
)

// Ranker orders users by correct answers.
type Ranker interface {
	// TopEntries returns at most limit ranked entries; limit <= 0 means all.
	TopEntries(ctx context.Context, limit int) []model.LeaderboardEntry
	// RankOf returns the 1-based rank and record of userID, or 0 and nil.
	RankOf(ctx context.Context, userID string) (int, *model.ScoreRecord)
}

// FullScanRanker ranks by scanning the whole ledger on every call. Equal
// scores keep the store's scan order.
type FullScanRanker struct {
	store Store
}

func NewFullScanRanker(store Store) *FullScanRanker {
	return &FullScanRanker{store: store}
}

func (r *FullScanRanker) ranked(ctx context.Context) ([]model.ScoreRecord, error) {
	records, err := r.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Correct > records[j].Correct
	})
	return records, nil
}

func (r *FullScanRanker) TopEntries(ctx context.Context, limit int) []model.LeaderboardEntry {
	records, err := r.ranked(ctx)
	if err != nil {
		slog.Error("read leaderboard", "error", err)
		return []model.LeaderboardEntry{}
	}
	return entries(records, limit)
}

func (r *FullScanRanker) RankOf(ctx context.Context, userID string) (int, *model.ScoreRecord) {
	records, err := r.ranked(ctx)
	if err != nil {
		slog.Error("read rank", "user", userID, "error", err)
		return 0, nil
	}
	for i := range records {
		if records[i].UserID == userID {
			rec := records[i]
			return i + 1, &rec
		}
	}
	return 0, nil
}

// Index is a store that keeps its records ordered by correct count.
type Index interface {
	Top(ctx context.Context, limit int) ([]model.ScoreRecord, error)
	Rank(ctx context.Context, userID string) (int, *model.ScoreRecord, error)
}

// IndexedRanker reads rankings from an Index instead of scanning the ledger.
// Tie order is whatever the index uses.
type IndexedRanker struct {
	index Index
}

func NewIndexedRanker(index Index) *IndexedRanker {
	return &IndexedRanker{index: index}
}

func (r *IndexedRanker) TopEntries(ctx context.Context, limit int) []model.LeaderboardEntry {
	records, err := r.index.Top(ctx, limit)
	if err != nil {
		slog.Error("read leaderboard", "error", err)
		return []model.LeaderboardEntry{}
	}
	return entries(records, limit)
}

func (r *IndexedRanker) RankOf(ctx context.Context, userID string) (int, *model.ScoreRecord) {
	rank, rec, err := r.index.Rank(ctx, userID)
	if err != nil {
		slog.Error("read rank", "user", userID, "error", err)
		return 0, nil
	}
	return rank, rec
}

func entries(records []model.ScoreRecord, limit int) []model.LeaderboardEntry {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]model.LeaderboardEntry, len(records))
	for i, rec := range records {
		out[i] = model.LeaderboardEntry{ScoreRecord: rec, Rank: i + 1}
	}
	return out
}

// FormatAccuracy renders correct/total as a percentage with one decimal,
// or "0%" when nothing was answered.
func FormatAccuracy(correct, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(correct)/float64(total)*100)
}
