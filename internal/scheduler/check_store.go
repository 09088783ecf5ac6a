package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastCheckKey = "billing:last_check"

// RedisCheckStore persists the scheduler's last-check stamp in redis.
type RedisCheckStore struct {
	client *redis.Client
}

// NewRedisCheckStore returns redis-backed check store.
func NewRedisCheckStore(client *redis.Client) *RedisCheckStore {
	return &RedisCheckStore{client: client}
}

// LastCheck returns the stored stamp; ok is false when none exists.
func (s *RedisCheckStore) LastCheck(ctx context.Context) (time.Time, bool, error) {
	result, err := s.client.Get(ctx, lastCheckKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, result)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// SetLastCheck stores the stamp.
func (s *RedisCheckStore) SetLastCheck(ctx context.Context, t time.Time) error {
	return s.client.Set(ctx, lastCheckKey, t.UTC().Format(time.RFC3339), 0).Err()
}
