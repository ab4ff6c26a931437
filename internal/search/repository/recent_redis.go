package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	pkgerrors "github.com/pkg/errors"

	"github.com/mercantil/storefront/internal/search"
	"github.com/mercantil/storefront/pkg/cache"
)

// session-scoped: the list expires with the browsing session
const sessionTTL = 24 * time.Hour

// RedisRecentStore keeps the recent-search list as a JSON-encoded string
// array under a fixed key per session, most-recent-first, capped.
type RedisRecentStore struct {
	cache  *cache.RedisClient
	prefix string
	limit  int
}

func NewRedisRecentStore(c *cache.RedisClient, prefix string, limit int) *RedisRecentStore {
	if limit <= 0 {
		limit = 5
	}
	return &RedisRecentStore{cache: c, prefix: prefix, limit: limit}
}

func (s *RedisRecentStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *RedisRecentStore) List(ctx context.Context, sessionID string) ([]string, error) {
	val, err := s.cache.Client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if pkgerrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "get recent searches")
	}

	var terms []string
	if err := json.Unmarshal([]byte(val), &terms); err != nil {
		// corrupt entry; start over
		return nil, nil
	}
	return terms, nil
}

func (s *RedisRecentStore) Record(ctx context.Context, sessionID, term string) ([]string, error) {
	terms, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updated := search.PushRecent(terms, term, s.limit)

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Client.Set(ctx, s.key(sessionID), data, sessionTTL).Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "store recent searches")
	}
	return updated, nil
}
