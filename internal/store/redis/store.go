package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pavelanni/slackquiz/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	usersKey = "quiz:users"
	boardKey = "quiz:board"

	fieldCorrect = "correct"
	fieldTotal   = "total"
	fieldUpdated = "last_updated"
)

// Store is a Redis-backed score ledger.
//   - Each user has a hash quiz:score:<user> holding the counters.
//   - quiz:users is the set of all known users, for full scans.
//   - quiz:board is a sorted set of correct counts, so the top of the board
//     and a user's rank can be read without a scan.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Increment applies d in a single MULTI/EXEC transaction.
func (s *Store) Increment(ctx context.Context, userID string, d model.ScoreDelta) (model.ScoreRecord, error) {
	var correct, total *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := s.key(userID)
		correct = pipe.HIncrBy(ctx, key, fieldCorrect, d.Correct)
		total = pipe.HIncrBy(ctx, key, fieldTotal, d.Total)
		pipe.HSet(ctx, key, fieldUpdated, d.At.Unix())
		pipe.SAdd(ctx, usersKey, userID)
		pipe.ZIncrBy(ctx, boardKey, float64(d.Correct), userID)
		return nil
	})
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("increment %s: %w", userID, err)
	}
	return model.ScoreRecord{
		UserID:      userID,
		Correct:     correct.Val(),
		Total:       total.Val(),
		LastUpdated: time.Unix(d.At.Unix(), 0),
	}, nil
}

// ScanAll returns every record ordered by user id.
func (s *Store) ScanAll(ctx context.Context) ([]model.ScoreRecord, error) {
	ids, err := s.client.SMembers(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.Strings(ids)
	return s.load(ctx, ids)
}

// Top returns up to limit records with the highest correct counts. Ties are
// ordered by user id descending, which is how the sorted set breaks them.
func (s *Store) Top(ctx context.Context, limit int) ([]model.ScoreRecord, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}
	ids, err := s.client.ZRevRange(ctx, boardKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	return s.load(ctx, ids)
}

// Rank returns the 1-based board position of userID, or 0 and nil if the user
// has never answered.
func (s *Store) Rank(ctx context.Context, userID string) (int, *model.ScoreRecord, error) {
	pos, err := s.client.ZRevRank(ctx, boardKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("rank %s: %w", userID, err)
	}
	records, err := s.load(ctx, []string{userID})
	if err != nil {
		return 0, nil, err
	}
	if len(records) == 0 {
		return 0, nil, nil
	}
	return int(pos) + 1, &records[0], nil
}

func (s *Store) load(ctx context.Context, ids []string) ([]model.ScoreRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	records := make([]model.ScoreRecord, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		r, err := decode(ids[i], fields)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func decode(userID string, fields map[string]string) (model.ScoreRecord, error) {
	r := model.ScoreRecord{UserID: userID}
	var err error
	if r.Correct, err = parseInt(fields, fieldCorrect); err != nil {
		return r, fmt.Errorf("score %s: %w", userID, err)
	}
	if r.Total, err = parseInt(fields, fieldTotal); err != nil {
		return r, fmt.Errorf("score %s: %w", userID, err)
	}
	ts, err := parseInt(fields, fieldUpdated)
	if err != nil {
		return r, fmt.Errorf("score %s: %w", userID, err)
	}
	r.LastUpdated = time.Unix(ts, 0)
	return r, nil
}

func parseInt(fields map[string]string, name string) (int64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return n, nil
}

func (s *Store) key(userID string) string {
	return "quiz:score:" + userID
}
