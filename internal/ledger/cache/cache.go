// Package cache keeps recent reconstruction results in Redis so the console
// fail-items view does not replay the day's log on every poll. Entries are a
// pure performance layer: every value is the output of one complete,
// consistent reconstruction run, expired by TTL and invalidated on write.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"opscheck/internal/ledger/models"
)

const defaultTTL = 30 * time.Second

// Cache wraps a Redis client. A nil *Cache (or nil client) disables caching;
// all methods degrade to misses and no-ops.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func failuresKey(day time.Time, env *models.Environment) string {
	scope := "all"
	if env != nil {
		scope = string(*env)
	}
	return fmt.Sprintf("opscheck:failures:%s:%s", models.Day(day).Format("2006-01-02"), scope)
}

// GetFailures returns a cached reconstruction result, or miss.
func (c *Cache) GetFailures(ctx context.Context, day time.Time, env *models.Environment) ([]models.FailureSummary, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, failuresKey(day, env)).Bytes()
	if err != nil {
		// Misses and transport failures are equivalent here; the caller
		// falls through to the log replay either way.
		return nil, false
	}
	var summaries []models.FailureSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, false
	}
	return summaries, true
}

// SetFailures stores one complete reconstruction result. Failures are
// ignored: the cache must never fail a read path.
func (c *Cache) SetFailures(ctx context.Context, day time.Time, env *models.Environment, summaries []models.FailureSummary) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(summaries)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, failuresKey(day, env), raw, c.ttl).Err()
}

// InvalidateDay drops every cached scope for the day. Called by the ledger
// writer after a commit so the console never serves a summary older than the
// TTL would already allow.
func (c *Cache) InvalidateDay(ctx context.Context, day time.Time) {
	if c == nil {
		return
	}
	keys := []string{failuresKey(day, nil)}
	for _, env := range models.Environments {
		e := env
		keys = append(keys, failuresKey(day, &e))
	}
	_ = c.client.Del(ctx, keys...).Err()
}
