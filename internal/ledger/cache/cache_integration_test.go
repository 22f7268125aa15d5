//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opscheck/internal/ledger/cache"
	"opscheck/internal/ledger/models"
	"opscheck/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Cache
	day   time.Time
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.New(s.redis.Client, time.Minute)
	s.day = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) summaries() []models.FailureSummary {
	return []models.FailureSummary{{
		Key:         models.Key{CheckItemID: 101, CheckDate: s.day, Environment: models.EnvPrd},
		SystemID:    1,
		SystemName:  "Payments",
		ItemName:    "API latency",
		UserID:      7,
		FirstFailAt: s.day.Add(9 * time.Hour),
		Notes:       "p99 over budget",
	}}
}

func (s *CacheSuite) TestSetThenGetRoundTrip() {
	ctx := context.Background()
	env := models.EnvPrd

	_, ok := s.cache.GetFailures(ctx, s.day, &env)
	s.False(ok)

	s.cache.SetFailures(ctx, s.day, &env, s.summaries())

	got, ok := s.cache.GetFailures(ctx, s.day, &env)
	s.Require().True(ok)
	s.Require().Len(got, 1)
	s.Equal("Payments", got[0].SystemName)
	s.True(got[0].FirstFailAt.Equal(s.day.Add(9 * time.Hour)))
}

func (s *CacheSuite) TestScopesAreIndependent() {
	ctx := context.Background()
	env := models.EnvPrd

	s.cache.SetFailures(ctx, s.day, &env, s.summaries())

	// The all-environments scope is a different key.
	_, ok := s.cache.GetFailures(ctx, s.day, nil)
	s.False(ok)

	other := models.EnvStg
	_, ok = s.cache.GetFailures(ctx, s.day, &other)
	s.False(ok)
}

func (s *CacheSuite) TestInvalidateDayDropsAllScopes() {
	ctx := context.Background()
	env := models.EnvPrd

	s.cache.SetFailures(ctx, s.day, &env, s.summaries())
	s.cache.SetFailures(ctx, s.day, nil, s.summaries())

	s.cache.InvalidateDay(ctx, s.day)

	_, ok := s.cache.GetFailures(ctx, s.day, &env)
	s.False(ok)
	_, ok = s.cache.GetFailures(ctx, s.day, nil)
	s.False(ok)
}

func (s *CacheSuite) TestNilCacheDegradesToMisses() {
	ctx := context.Background()
	var c *cache.Cache

	c.SetFailures(ctx, s.day, nil, s.summaries())
	_, ok := c.GetFailures(ctx, s.day, nil)
	s.False(ok)
	c.InvalidateDay(ctx, s.day)
}
