package score

import (
	"context"
	"time"

	"github.com/pavelanni/slackquiz/internal/model"
)

// Export snapshots the full ranking. storeName is recorded as-is.
func Export(ctx context.Context, r Ranker, storeName string, now time.Time) model.LeaderboardExport {
	ranked := r.TopEntries(ctx, 0)
	exp := model.LeaderboardExport{
		GeneratedAt: now,
		Store:       storeName,
		Entries:     make([]model.ExportEntry, 0, len(ranked)),
	}
	for _, e := range ranked {
		exp.Entries = append(exp.Entries, model.ExportEntry{
			Rank:        e.Rank,
			UserID:      e.UserID,
			Correct:     e.Correct,
			Total:       e.Total,
			Accuracy:    e.Accuracy(),
			LastUpdated: e.LastUpdated,
		})
	}
	return exp
}
