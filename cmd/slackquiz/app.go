package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/pavelanni/slackquiz/internal/handler"
	appI18n "github.com/pavelanni/slackquiz/internal/i18n"
	"github.com/pavelanni/slackquiz/internal/llm"
	"github.com/pavelanni/slackquiz/internal/model"
	"github.com/pavelanni/slackquiz/internal/quiz"
	"github.com/pavelanni/slackquiz/internal/score"
	"github.com/pavelanni/slackquiz/internal/secrets"
	"github.com/pavelanni/slackquiz/internal/signature"
	"github.com/pavelanni/slackquiz/internal/store"
	"github.com/pavelanni/slackquiz/internal/store/dynamodb"
	"github.com/pavelanni/slackquiz/internal/store/memory"
	"github.com/pavelanni/slackquiz/internal/store/postgres"
	redisstore "github.com/pavelanni/slackquiz/internal/store/redis"
	"github.com/pavelanni/slackquiz/internal/token"
)

var _ score.Index = (*redisstore.Store)(nil)

// ledger is an opened score store with the ranker that fits it.
type ledger struct {
	name   string
	store  score.Store
	ranker score.Ranker
	close  func()
}

func configFromViper(v *viper.Viper) model.Config {
	return model.Config{
		Lang:            v.GetString("lang"),
		SigningSecretID: v.GetString("signing-secret-id"),
		TokenSign:       v.GetBool("token-sign"),
		TokenKeyID:      v.GetString("token-key-id"),
		StrictQuestions: v.GetBool("quiz-strict"),
		LeaderboardSize: v.GetInt("leaderboard-size"),
		SecretCacheTTL:  v.GetDuration("secret-cache-ttl"),
	}
}

func openLedger(ctx context.Context, v *viper.Viper) (*ledger, error) {
	kind := v.GetString("store")
	switch kind {
	case "memory":
		s := memory.New()
		return &ledger{name: kind, store: s, ranker: score.NewFullScanRanker(s), close: func() {}}, nil
	case "sqlite":
		s, err := store.New(v.GetString("db"))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &ledger{name: kind, store: s, ranker: score.NewFullScanRanker(s), close: func() { _ = s.Close() }}, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     v.GetString("redis-addr"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s := redisstore.New(client)
		return &ledger{name: kind, store: s, ranker: score.NewIndexedRanker(s), close: func() { _ = client.Close() }}, nil
	case "postgres":
		pool, err := postgres.Connect(ctx, v.GetString("postgres-url"))
		if err != nil {
			return nil, err
		}
		s := postgres.New(pool)
		return &ledger{name: kind, store: s, ranker: score.NewFullScanRanker(s), close: pool.Close}, nil
	case "dynamodb":
		s, err := dynamodb.Connect(ctx, v.GetString("aws-region"), v.GetString("dynamodb-table"))
		if err != nil {
			return nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		return &ledger{name: kind, store: s, ranker: score.NewFullScanRanker(s), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}

func secretStore(ctx context.Context, v *viper.Viper, cfg model.Config) (secrets.Store, error) {
	var backend secrets.Store
	switch kind := v.GetString("secrets-backend"); kind {
	case "env":
		backend = secrets.Env{}
	case "static":
		backend = secrets.Static{cfg.SigningSecretID: v.GetString("signing-secret")}
	case "aws":
		s, err := secrets.NewAWS(ctx, v.GetString("aws-region"))
		if err != nil {
			return nil, err
		}
		backend = s
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", kind)
	}
	return secrets.NewCached(backend, cfg.SecretCacheTTL), nil
}

// buildHandler wires the webhook from configuration. The returned cleanup
// closes the ledger.
func buildHandler(ctx context.Context, v *viper.Viper) (*handler.Handler, func(), error) {
	cfg := configFromViper(v)

	if err := appI18n.Init(cfg.Lang); err != nil {
		return nil, nil, fmt.Errorf("init i18n: %w", err)
	}

	sec, err := secretStore(ctx, v, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("secret store: %w", err)
	}
	if _, err := sec.Get(ctx, cfg.SigningSecretID); err != nil {
		// Requests are rejected until the secret appears.
		slog.Warn("signing secret unavailable", "id", cfg.SigningSecretID, "error", err)
	}

	var tokenKey []byte
	if cfg.TokenSign {
		id := cfg.TokenKeyID
		if id == "" {
			id = cfg.SigningSecretID
		}
		tokenKey, err = sec.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("token key %s: %w", id, err)
		}
	}

	var gen quiz.Generator
	if url := v.GetString("llm-url"); url != "" {
		client := llm.New(llm.Options{
			BaseURL:   url,
			APIKey:    v.GetString("llm-key"),
			Model:     v.GetString("llm-model"),
			MaxTokens: v.GetInt("llm-max-tokens"),
			Timeout:   v.GetDuration("llm-timeout"),
		})
		if err := client.Ping(ctx); err != nil {
			slog.Warn("LLM health check failed, questions will use the fallback until it recovers", "url", url, "error", err)
		} else {
			slog.Info("LLM endpoint OK", "url", url, "model", v.GetString("llm-model"))
		}
		gen = client
	} else {
		slog.Warn("no llm-url configured, every quiz uses the fallback question")
	}

	l, err := openLedger(ctx, v)
	if err != nil {
		return nil, nil, err
	}

	h := handler.New(
		signature.NewVerifier(sec, cfg.SigningSecretID),
		quiz.NewProvider(gen, cfg.Lang, v.GetString("topic"), cfg.StrictQuestions),
		token.NewCodec(tokenKey),
		score.NewLedger(l.store),
		l.ranker,
		cfg,
	)
	slog.Info("webhook configured",
		"lang", cfg.Lang,
		"store", l.name,
		"secrets_backend", v.GetString("secrets-backend"),
		"token_sign", cfg.TokenSign,
		"quiz_strict", cfg.StrictQuestions,
	)
	return h, l.close, nil
}

var errMissingFlag = errors.New("missing required value")
