package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pavelanni/slackquiz/internal/model"
)

// Store is a Postgres-backed score ledger. The schema is created by the
// migrations package.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for url and checks that the server answers.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (s *Store) Increment(ctx context.Context, userID string, d model.ScoreDelta) (model.ScoreRecord, error) {
	var (
		r  model.ScoreRecord
		ts int64
	)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO quiz_scores (user_id, correct, total, last_updated) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
			correct = quiz_scores.correct + EXCLUDED.correct,
			total = quiz_scores.total + EXCLUDED.total,
			last_updated = EXCLUDED.last_updated
		 RETURNING user_id, correct, total, last_updated`,
		userID, d.Correct, d.Total, d.At.Unix(),
	).Scan(&r.UserID, &r.Correct, &r.Total, &ts)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("increment %s: %w", userID, err)
	}
	r.LastUpdated = time.Unix(ts, 0)
	return r, nil
}

// ScanAll returns every record in the order users were first seen.
func (s *Store) ScanAll(ctx context.Context) ([]model.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id, correct, total, last_updated FROM quiz_scores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan scores: %w", err)
	}
	defer rows.Close()
	var records []model.ScoreRecord
	for rows.Next() {
		var (
			r  model.ScoreRecord
			ts int64
		)
		if err := rows.Scan(&r.UserID, &r.Correct, &r.Total, &ts); err != nil {
			return nil, fmt.Errorf("scan scores: %w", err)
		}
		r.LastUpdated = time.Unix(ts, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}
