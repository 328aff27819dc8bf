package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pavelanni/slackquiz/internal/model"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed score ledger.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		user_id TEXT PRIMARY KEY,
		correct INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		last_updated INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ledger_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.checkSchemaVersion()
}

// Increment adds d to the user's counters in a single statement and returns
// the updated record. A missing row starts from zero.
func (s *Store) Increment(ctx context.Context, userID string, d model.ScoreDelta) (model.ScoreRecord, error) {
	var (
		r  model.ScoreRecord
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO scores (user_id, correct, total, last_updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			correct = correct + excluded.correct,
			total = total + excluded.total,
			last_updated = excluded.last_updated
		 RETURNING user_id, correct, total, last_updated`,
		userID, d.Correct, d.Total, d.At.Unix(),
	).Scan(&r.UserID, &r.Correct, &r.Total, &ts)
	if err != nil {
		return model.ScoreRecord{}, err
	}
	r.LastUpdated = time.Unix(ts, 0)
	return r, nil
}

// ScanAll returns every score record in insertion order.
func (s *Store) ScanAll(ctx context.Context) ([]model.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, correct, total, last_updated FROM scores ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.ScoreRecord
	for rows.Next() {
		var (
			r  model.ScoreRecord
			ts int64
		)
		if err := rows.Scan(&r.UserID, &r.Correct, &r.Total, &ts); err != nil {
			return nil, err
		}
		r.LastUpdated = time.Unix(ts, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}
