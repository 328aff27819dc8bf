package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned when a secret identifier has no value.
var ErrNotFound = errors.New("secret not found")

// Store returns a secret value for an identifier.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
}

// Static is a Store backed by an in-memory map (useful for tests and local runs).
type Static map[string]string

// Get implements Store.
func (s Static) Get(_ context.Context, id string) ([]byte, error) {
	v, ok := s[id]
	if !ok || v == "" {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return []byte(v), nil
}

// Env reads secrets from environment variables. The identifier is upper-cased
// and dashes become underscores, so "slack-signing-secret" reads
// SLACK_SIGNING_SECRET.
type Env struct {
	Prefix string
}

// Get implements Store.
func (e Env) Get(_ context.Context, id string) ([]byte, error) {
	name := e.Prefix + strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
	v := os.Getenv(name)
	if v == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return []byte(v), nil
}

// Cached wraps a Store and reuses fetched values for a TTL. Concurrent misses
// for the same identifier share a single backend call.
type Cached struct {
	next  Store
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     []byte
	expiresAt time.Time
}

// NewCached creates a caching Store. A non-positive ttl disables caching.
func NewCached(next Store, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		cache: make(map[string]cachedSecret),
	}
}

// Get implements Store.
func (c *Cached) Get(ctx context.Context, id string) ([]byte, error) {
	if c.ttl <= 0 {
		return c.next.Get(ctx, id)
	}
	if v, ok := c.lookup(id); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if v, ok := c.lookup(id); ok {
			return v, nil
		}
		// Shared by every waiter, so the first caller's cancellation must not abort it.
		v, err := c.next.Get(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[id] = cachedSecret{value: v, expiresAt: c.clock().Add(c.ttl)}
		c.mu.Unlock()
		slog.Debug("secret cached", "id", id, "ttl", c.ttl)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Cached) lookup(id string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.value, true
}
